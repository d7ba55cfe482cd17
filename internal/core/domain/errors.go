package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport means the request never reached the backend or never returned.
	ErrTransport = errors.New("backend unreachable")
	// ErrMalformedResponse means the backend body did not have the expected shape.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrValidation is a local, pre-submission failure. It never reaches the network.
	ErrValidation = errors.New("validation failed")

	ErrEmptyDraft        = fmt.Errorf("%w: value must not be empty", ErrValidation)
	ErrNoSession         = errors.New("no active session")
	ErrSubmitInFlight    = errors.New("submit already in progress")
	ErrInvalidTransition = errors.New("invalid edit transition")
	ErrNoRosterScope     = errors.New("role has no roster")
)

// RejectedError is a non-success status returned by the backend.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend rejected request (status %d)", e.Status)
	}
	return fmt.Sprintf("backend rejected request (status %d): %s", e.Status, e.Message)
}

// IsRejected reports whether err carries a backend rejection and returns it.
func IsRejected(err error) (*RejectedError, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
