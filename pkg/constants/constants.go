package constants

import "time"

const (
	DefaultPage     = 1
	DefaultPageSize = 10

	// EmptyStateGracePeriod is how long the list page hides its "no results"
	// message after mounting.
	EmptyStateGracePeriod = time.Second

	LeadsPath = "/leads"

	AuthTokenEnv = "LEADS_AUTH_TOKEN"
	BaseURLEnv   = "LEADS_API_BASE_URL"

	// HTTPScheme prefixes absolute URLs, https included.
	HTTPScheme = "http"
)
