package leadsctl

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/leadscrm/leads.go"
	"github.com/leadscrm/leads.go/pkg/connection"
	"github.com/leadscrm/leads.go/pkg/logger"
)

// Version is set at build time.
var Version = "0.1.0"

// App is what every command runs with. It is built once the configuration
// has been loaded.
type App struct {
	Config *Config
	Client *leads.Client
	Logger zerolog.Logger

	logData *logger.LogData
}

type appKey struct{}

// NewRootCmd creates the leadsctl command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile, envFile string

	rootCmd := &cobra.Command{
		Use:   "leadsctl",
		Short: "Command line client for the Leads CRM API",
		Long: `leadsctl lists, creates, updates, archives and converts leads through the
Leads CRM REST API.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := LoadConfig(cfgFile, envFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logData, err := logger.New().FromBuffer(cmd.ErrOrStderr()).Level(cfg.LogLevel).Console().Make()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			l := logData.Logger

			conCfg := connection.NewConfig(cfg.BaseURL).
				WithAuthToken(cfg.AuthToken).
				WithLogger(&l)
			conCfg.UserAgent = "leadsctl/" + Version

			app := &App{
				Config:  cfg,
				Client:  leads.New(conCfg),
				Logger:  l,
				logData: logData,
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if app, ok := cmd.Context().Value(appKey{}).(*App); ok {
				return app.logData.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./"+DefaultConfigFile+")")
	flags.StringVar(&envFile, "env-file", DefaultEnvFile, "dotenv file loaded before reading LEADS_* variables")
	flags.String("base-url", "", "API base URL, e.g. https://crm.example.com/api")
	flags.String("auth-token", "", "bearer token")
	flags.Int("page-size", 0, "page size for list and browse")
	flags.StringP("output", "o", "", "output format (table|json)")
	flags.String("log-level", "", "log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{OutputTable, OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		newListCommand(),
		newGetCommand(),
		newCreateCommand(),
		newUpdateCommand(),
		newArchiveCommand(),
		newNoteCommand(),
		newConvertCommand(),
		newLookupsCommand(),
		newBrowseCommand(),
		newFakeServerCommand(),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// AppFrom returns the App stored by the root command.
func AppFrom(cmd *cobra.Command) (*App, error) {
	app, ok := cmd.Context().Value(appKey{}).(*App)
	if !ok {
		return nil, fmt.Errorf("leadsctl: configuration not loaded")
	}
	return app, nil
}
