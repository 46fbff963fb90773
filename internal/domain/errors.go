package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTestNotFound is returned when a test id resolves to nothing.
	ErrTestNotFound = errors.New("test not found")
	// ErrParticipantNotFound is returned by stores when an append targets a
	// (subject, test) pair with no participant record.
	ErrParticipantNotFound = errors.New("participant not found")
)

// ValidationError reports a malformed test or variant definition. It is
// surfaced at creation time; definitions are never silently repaired.
type ValidationError struct {
	msg string
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return "invalid test definition: " + e.msg
}
