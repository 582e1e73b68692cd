package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned for responses outside the 2xx range
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, url, message string) error {
	return &HTTPError{StatusCode: statusCode, URL: url, Message: message}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// Temporary reports whether retrying the same request later may succeed
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// IsTemporary reports whether err wraps a temporary HTTPError. Transport
// failures without a response are not considered temporary.
func IsTemporary(err error) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.Temporary()
}
