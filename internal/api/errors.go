package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse marks a 2xx response whose body could not be used.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
	// Detail is the service's "detail" field, empty when the body had none.
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Endpoint, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Status)
}

// DetailOf extracts the service-provided detail message from err, if any.
func DetailOf(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return strings.TrimSpace(statusErr.Detail)
	}
	return ""
}
