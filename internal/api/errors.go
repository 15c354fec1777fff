package api

import (
	"errors"
	"fmt"
)

// NetworkError means the request could not be completed: transport failure,
// cancellation, or a non-200 status
type NetworkError struct {
	URL        string
	RequestID  string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the response body does not match the
// admission analytics schema
type MalformedResponseError struct {
	URL       string
	RequestID string
	Err       error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.URL, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is or wraps a *NetworkError
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsMalformedResponse reports whether err is or wraps a *MalformedResponseError
func IsMalformedResponse(err error) bool {
	var malformed *MalformedResponseError
	return errors.As(err, &malformed)
}
