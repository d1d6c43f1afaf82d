// Package contrib holds tools built on top of the Leads client that are not
// part of the core library.
//
// Nothing here is covered by the compatibility guarantees of the core
// packages; it may change without a major version bump.
//
// [github.com/leadscrm/leads.go/contrib/leadsctl] is a command line client:
// it lists, creates, updates, archives and converts leads, has an
// interactive browse view built on the list page controller, and can serve
// an in-memory fake API for local development.
package contrib
