package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy for the shop client
var (
	// Transport errors
	ErrNetwork = errors.New("network failure")
	ErrClient  = errors.New("client error")
	ErrServer  = errors.New("server error")

	// Data errors
	ErrParse   = errors.New("malformed value")
	ErrStorage = errors.New("storage failure")

	// Session errors
	ErrNotFound           = errors.New("not found")
	ErrInvalidShopID      = errors.New("invalid shop id")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// HTTPError is returned for any non-2xx response. It unwraps to ErrClient
// for 4xx statuses and ErrServer for 5xx. Other statuses (1xx, 3xx) match
// neither sentinel.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *HTTPError) Unwrap() error {
	switch {
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return ErrClient
	case e.StatusCode >= 500:
		return ErrServer
	}
	return nil
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
