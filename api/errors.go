// File: api/errors.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error values and the structured error type shared across hioload-net.

package api

import "fmt"

// Common errors used across the library.
var (
	// ErrInProgress reports a non-blocking connect that has started but not
	// yet completed. It is a normal outcome, not a failure: the caller
	// answers it with a readiness wait, not a retry of Connect.
	ErrInProgress = fmt.Errorf("connect in progress")

	// ErrNotOpen reports an operation on a socket whose handle was never
	// opened or has already been closed.
	ErrNotOpen = fmt.Errorf("socket is not open")

	// ErrExceptional reports an exceptional readiness condition for which
	// the OS supplied no specific errno.
	ErrExceptional = fmt.Errorf("exceptional condition on handle")

	// ErrExecutorClosed reports a registration against a stopped executor.
	ErrExecutorClosed = fmt.Errorf("executor is closed")

	// ErrOperationTimeout reports a timed wait that elapsed before the
	// awaited condition held.
	ErrOperationTimeout = fmt.Errorf("operation timeout")

	// ErrInvalidArgument reports a malformed argument such as an
	// unparseable endpoint host.
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// ErrNotSupported reports a facility unavailable on this platform.
	ErrNotSupported = fmt.Errorf("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeNotOpen
	ErrCodeInProgress
	ErrCodeTimeout
	ErrCodeNotSupported
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
