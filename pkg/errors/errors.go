package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any HTTPError with a 404 status via errors.Is. A missing
// resource (e.g. no current enrollment) is a valid empty state for callers that
// opt in; everyone else sees it as a regular HTTP failure.
var ErrNotFound = errors.New("resource not found")

// HTTPError is returned when the service answered with a non-2xx status.
// Body carries the raw response payload for diagnostics; Code is the parsed
// error message when the service sent one.
type HTTPError struct {
	Status int    `json:"status"`
	Code   string `json:"code,omitempty"`
	Body   string `json:"body,omitempty"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Code != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// Is reports 404 responses as ErrNotFound.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e != nil && e.Status == http.StatusNotFound
}

// Temporary reports whether the failure class is worth a manual retry.
// Server-side errors are; client errors need corrected input.
func (e *HTTPError) Temporary() bool {
	return e != nil && e.Status >= http.StatusInternalServerError
}

// RequestError wraps a transport-level failure: the service was never reached
// or the connection broke mid-flight. Safe to retry manually.
type RequestError struct {
	Op  string
	URL string
	Err error
}

func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the transport error.
func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DecodeError signals a malformed response body. Fatal to the operation and
// never retried; the payload was already consumed.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying decoding error.
func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsNotFound reports whether err represents a 404 response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether the caller may usefully retry the same request:
// transport failures and 5xx responses qualify, everything else does not.
func IsRetryable(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	return false
}

// StatusOf extracts the HTTP status from err, or 0 when err carries none.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
