package connection

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/leadscrm/leads.go/internal/codec"
)

// Config carries everything HTTPConnection needs. It is not absolutely necessary
// to create a Config using NewConfig, but NewConfig sets the JSON codec the Leads
// API expects.
type Config struct {
	// BaseURL is prefixed to every relative request path, e.g. "https://crm.example.com/api".
	BaseURL string
	// AuthToken, when non-empty, is sent as a bearer token on every call.
	AuthToken string
	// UserAgent overrides Go's default User-Agent header.
	UserAgent string

	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler

	// HTTPClient defaults to a client with no timeout; the transport leaves
	// timeouts to the caller's context or client.
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

func NewConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Marshaler:   codec.JSON{},
		Unmarshaler: codec.JSON{},
	}
}

func (c *Config) WithAuthToken(token string) *Config {
	c.AuthToken = token
	return c
}

func (c *Config) WithHTTPClient(client *http.Client) *Config {
	c.HTTPClient = client
	return c
}

func (c *Config) WithLogger(l *zerolog.Logger) *Config {
	c.Logger = l
	return c
}
