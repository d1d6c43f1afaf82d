package leadsctl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leadscrm/leads.go/pkg/constants"
)

const (
	DefaultConfigFile = "leadsctl.yaml"
	DefaultEnvFile    = ".env"
	DefaultOutput     = OutputTable
	DefaultLogLevel   = "warn"

	OutputTable = "table"
	OutputJSON  = "json"

	envPrefix = "LEADS_"
)

type Config struct {
	BaseURL   string `koanf:"base_url"`
	AuthToken string `koanf:"auth_token"`
	PageSize  int    `koanf:"page_size"`
	Output    string `koanf:"output"`
	LogLevel  string `koanf:"log_level"`
}

// LoadConfig layers defaults, the config file, LEADS_* environment variables
// and explicitly set flags, highest last. envFile, when present, is loaded
// into the process environment first without overriding variables already set.
func LoadConfig(cfgFile, envFile string, flags *pflag.FlagSet) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"base_url":   "",
		"auth_token": "",
		"page_size":  constants.DefaultPageSize,
		"output":     DefaultOutput,
		"log_level":  DefaultLogLevel,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := cfgFile != ""
	if cfgFile == "" {
		cfgFile = DefaultConfigFile
	}
	if _, err := os.Stat(cfgFile); err == nil {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
	}

	// LEADS_AUTH_TOKEN -> auth_token; LEADS_API_BASE_URL is the SDK's name for base_url.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if s == constants.BaseURLEnv {
			return "base_url"
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("invalid output %q (want %s or %s)", c.Output, OutputTable, OutputJSON)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("invalid page_size %d", c.PageSize)
	}
	return nil
}
