// Package errclass defines the stable error classes the engine reports.
package errclass

import (
	"errors"
	"fmt"
)

// Error is a machine-readable error class with an optional detail message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// WithMessage returns a new Error with the same Code but a specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg}
}

// WithMessagef returns a new Error with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	// ErrInvalidTransition: the operation is not legal in the current state.
	// No state was mutated.
	ErrInvalidTransition = &Error{Code: "E_INVALID_TRANSITION"}
	// ErrPermissionMissing: a native capability needed for full enforcement
	// is unavailable. Enforcement degraded, the session keeps running.
	ErrPermissionMissing = &Error{Code: "E_PERMISSION_MISSING"}
	// ErrBridgeFailure: a platform bridge call failed, panicked or timed out.
	ErrBridgeFailure = &Error{Code: "E_BRIDGE_FAILURE"}
	// ErrResourceFailure: a custom sound import or removal failed. The
	// library is unchanged.
	ErrResourceFailure = &Error{Code: "E_RESOURCE_FAILURE"}
)

// Code returns the class code of err, or "" when err carries none.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
