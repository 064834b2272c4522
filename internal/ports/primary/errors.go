package primary

import (
	"fmt"
	"strings"
)

// ValidationError marks a malformed or unacceptable request field. Surfaced
// to the caller as a client error; no side effects were performed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// UnknownTargetError lists every unrecognized recipient name in one error.
type UnknownTargetError struct {
	Names []string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target name(s): %s", strings.Join(e.Names, ", "))
}

// RegistrationError marks a trigger registration the dispatcher rejected for
// a reason other than a name conflict. Triggers registered before the failure
// stay registered; there is no compensating rollback.
type RegistrationError struct {
	Name string
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register trigger %s: %v", e.Name, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}
