// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error taxonomy for the completion-port core.

package api

import "fmt"

// Sentinel errors returned across the library. Callers match them with
// errors.Is; the facade never wraps one sentinel inside another.
var (
	// ErrInvalidHandle indicates the handle does not refer to a live port.
	ErrInvalidHandle = fmt.Errorf("completion port: invalid handle")

	// ErrAccessDenied indicates the handle lacks the rights the operation needs.
	ErrAccessDenied = fmt.Errorf("completion port: access denied")

	// ErrNotFound indicates no port is registered under the requested name.
	ErrNotFound = fmt.Errorf("completion port: not found")

	// ErrNameExists indicates a Create collided with a registered name.
	ErrNameExists = fmt.Errorf("completion port: name already exists")

	// ErrInvalidInfoClass indicates an unsupported query information class.
	ErrInvalidInfoClass = fmt.Errorf("completion port: invalid information class")

	// ErrInfoLengthMismatch indicates a query buffer of the wrong size.
	ErrInfoLengthMismatch = fmt.Errorf("completion port: information length mismatch")

	// ErrInsufficientResources indicates packet allocation or quota charge failed.
	ErrInsufficientResources = fmt.Errorf("completion port: insufficient resources")

	// ErrTimedOut indicates a Remove wait elapsed with no entry available.
	ErrTimedOut = fmt.Errorf("completion port: timed out")

	// ErrInterrupted indicates a Remove wait was aborted externally
	// without consuming an entry.
	ErrInterrupted = fmt.Errorf("completion port: wait interrupted")

	// ErrPortClosed indicates the port ran down while waiting or before the call.
	ErrPortClosed = fmt.Errorf("completion port: port closed")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidHandle
	ErrCodeAccessDenied
	ErrCodeNotFound
	ErrCodeNameExists
	ErrCodeInvalidInfoClass
	ErrCodeInfoLengthMismatch
	ErrCodeInsufficientResources
	ErrCodeTimedOut
	ErrCodeInterrupted
	ErrCodePortClosed
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// sentinels maps each code to its package sentinel.
var sentinels = map[ErrorCode]error{
	ErrCodeInvalidHandle:         ErrInvalidHandle,
	ErrCodeAccessDenied:          ErrAccessDenied,
	ErrCodeNotFound:              ErrNotFound,
	ErrCodeNameExists:            ErrNameExists,
	ErrCodeInvalidInfoClass:      ErrInvalidInfoClass,
	ErrCodeInfoLengthMismatch:    ErrInfoLengthMismatch,
	ErrCodeInsufficientResources: ErrInsufficientResources,
	ErrCodeTimedOut:              ErrTimedOut,
	ErrCodeInterrupted:           ErrInterrupted,
	ErrCodePortClosed:            ErrPortClosed,
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the sentinel behind the code, so errors.Is matches a
// structured error against the package sentinels.
func (e *Error) Unwrap() error {
	return sentinels[e.Code]
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
