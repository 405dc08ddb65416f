package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTimeout           = errors.New("timeout waiting for prompt")
	ErrNotConnected      = errors.New("not connected to device")
	ErrInvalidTransition = errors.New("invalid mode transition")
	ErrNotImplemented    = errors.New("not implemented")
	ErrValidation        = errors.New("validation failed")
	ErrNoData            = errors.New("no data in device reply")
)

// ValidationError reports an incomplete or contradictory request. It is
// returned before any command is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TransitionError reports a mode change that cannot be planned.
type TransitionError struct {
	From   Mode
	To     Mode
	Reason string
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid mode transition %s -> %s: %s", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidTransition, e.Err}
	}
	return []error{ErrInvalidTransition}
}

// ProvisionError is the failure value of a provisioning command: either the
// device rejected it (Output holds the raw reply) or the transport failed
// (Err wraps the cause, typically ErrTimeout). Batch callers match it with
// errors.As and carry on with the next target.
type ProvisionError struct {
	Operation string
	Output    string
	Err       error
}

func (e *ProvisionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s rejected by device: %s", e.Operation, strings.TrimSpace(e.Output))
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// Detail is the failure description: the device output, or the transport
// error message when no output was received.
func (e *ProvisionError) Detail() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// IsTimeout reports whether err was caused by a prompt timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
