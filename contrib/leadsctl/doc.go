// Package leadsctl implements leadsctl, a command line client for the Leads
// CRM API built on the leads SDK.
//
// Configuration is read from, lowest precedence first: built-in defaults,
// leadsctl.yaml, LEADS_* environment variables (an optional .env file is
// loaded first) and command line flags.
//
//	base_url:   https://crm.example.com/api
//	auth_token: ...
//	page_size:  10
//	output:     table   # or json
//	log_level:  warn
//
// The browse command opens an interactive list view with filtering,
// selection and bulk archiving. fake-server runs the in-memory backend used by
// the SDK's tests, which is handy for trying the client out.
package leadsctl
