package client

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("api key is required")

// APIError is a failed search request: either a non-success status or a
// transport failure (ErrorClassNetwork, StatusCode 0 unless the body read
// failed).
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string

	// Body is the raw response body of a non-success response.
	Body string

	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("search %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("search %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}
