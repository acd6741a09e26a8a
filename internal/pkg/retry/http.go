package retry

import (
	"fmt"
	"net/http"
)

// HTTPStatusError represents a non-2xx response from an upstream HTTP call.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Retryable reports whether the status code indicates a transient condition.
// Server errors and 429 are retried; client errors are not.
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout
}

// NewHTTPStatusError creates an HTTPStatusError.
func NewHTTPStatusError(statusCode int, url string) *HTTPStatusError {
	return &HTTPStatusError{StatusCode: statusCode, URL: url}
}
