package constants

import "errors"

// Errors
var (
	ErrNoBaseURL     = errors.New("base url not set")
	ErrNoMarshaler   = errors.New("marshaler is not set")
	ErrNoUnmarshaler = errors.New("unmarshaler is not set")
	ErrNotText       = errors.New("response is not JSON and destination cannot hold text")
)
