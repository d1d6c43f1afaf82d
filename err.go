package leads

import (
	"net/http"

	"github.com/leadscrm/leads.go/pkg/connection"
)

// Status matchers for errors.Is. They compare by HTTP status only.
var (
	ErrNotFound     = &connection.APIError{Status: http.StatusNotFound, Message: "not found"}
	ErrConflict     = &connection.APIError{Status: http.StatusConflict, Message: "conflict"}
	ErrUnauthorized = &connection.APIError{Status: http.StatusUnauthorized, Message: "unauthorized"}
)
