package volunteers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// TransportError reports a request that never produced an HTTP response:
// unreachable host, DNS failure, timeout or cancellation.
type TransportError struct {
	Op     string
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("volunteers %s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request failed because a deadline expired.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// HTTPError reports a non-2xx response. Body holds the server payload.
type HTTPError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("volunteers %s: %s %s returned status %d", e.Op, e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("volunteers %s: %s %s returned status %d: %s", e.Op, e.Method, e.URL, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an HTTPError with status 404.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// IsTimeout reports whether err is a timed-out TransportError.
func IsTimeout(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr) && tErr.Timeout()
}
