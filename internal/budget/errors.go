package budget

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when a call needs a session token and none is set.
	ErrUnauthenticated = errors.New("budget: not authenticated")
	// ErrAuthFailed is returned when the API rejects a Telegram user.
	ErrAuthFailed = errors.New("budget: authentication failed")
	// ErrNotFound is returned when the API answers with an empty result where one item was expected.
	ErrNotFound = errors.New("budget: not found")
)

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("budget: %s: unexpected status (%d)", e.Op, e.StatusCode)
}

// Code exposes the HTTP status for error classification.
func (e *StatusError) Code() int {
	return e.StatusCode
}
