package connection

import (
	"errors"
	"fmt"
)

// APIError is the single error shape produced by HTTPConnection, whether the
// server answered with a failure status or the call never completed.
type APIError struct {
	Message string
	// Status is the HTTP status code, or 0 when no response was received.
	Status int
	// Details is the parsed error body: a decoded JSON value or the raw text.
	Details any

	cause error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Is matches another APIError with the same non-zero status, so callers can
// write errors.Is(err, &connection.APIError{Status: 404}).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Status != 0 && t.Status == e.Status
}

func (e *APIError) StatusCode() int {
	return e.Status
}

// AsAPIError extracts the *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

func newTransportError(msg string, cause error) *APIError {
	return &APIError{Message: fmt.Sprintf("%s: %v", msg, cause), cause: cause}
}
