// The [leads] package is a client for the Leads CRM REST API.
//
// # Transport
//
// Every call goes through [connection.HTTPConnection], which resolves paths against a base URL,
// attaches the bearer token, disables caching and turns every failure into a [connection.APIError].
// Use [errors.Is] with [ErrNotFound], [ErrConflict] or [ErrUnauthorized] to branch on common statuses.
//
// # Resource client
//
// [Client] exposes one method per server action: listing with [models.Filters], reading, creating,
// partially updating and bulk-archiving leads, adding notes, converting a lead into a customer and
// reading the lookup tables (master lead sources and tags).
//
// # State
//
// The client is stateless. The [github.com/leadscrm/leads.go/pkg/store] package keeps the current
// filters, page, selected lead, loading flag and last error on top of it, and
// [github.com/leadscrm/leads.go/pkg/listpage] drives a list screen from the store.
//
// # Command line
//
// The [github.com/leadscrm/leads.go/contrib] directory holds leadsctl, a command line client
// built on this package. It is not covered by the SDK's backward compatibility guarantee.
package leads
