package mux

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a failure reported by the platform. StatusCode is the remote
// HTTP status; Type and Message come from the platform's error body when it
// supplied one.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mux: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("mux: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a platform 404. During resolution a 404 is
// a normal disambiguation step, never a hard failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// StatusCode extracts the remote status code from err, defaulting to 500 when
// the failure did not carry one (network errors, decode errors).
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}
