// Package errors provides structured error types for cellforge.
//
// Every failure raised by the layout core carries a machine-readable [Code]
// so callers can tell geometric construction failures (an endpoint that is
// off-grid, a duplicate pin) apart from serialization failures without
// string matching.
//
// # Error Codes
//
//   - UNPLACED_INSTANCE: anchor query on an instance that was never placed
//   - INVALID_PARAMETER: template generation with out-of-domain parameters
//   - UNALIGNED_ENDPOINT: a routing endpoint that is not on a grid tick
//   - DISJOINT_TRACK: a track that cannot be reached from the endpoints
//   - DUPLICATE_PIN: pin name collision within one design
//   - MISSING_TEMPLATE_OR_GRID: technology lookup miss
//   - SERIALIZATION: template record export/import failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicatePin, "pin %q already exists", name)
//	if errors.Is(err, errors.ErrCodeDuplicatePin) {
//	    // Handle collision
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSerialization, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the layout core.
const (
	// Geometry and construction errors
	ErrCodeUnplacedInstance  Code = "UNPLACED_INSTANCE"
	ErrCodeInvalidParameter  Code = "INVALID_PARAMETER"
	ErrCodeUnalignedEndpoint Code = "UNALIGNED_ENDPOINT"
	ErrCodeDisjointTrack     Code = "DISJOINT_TRACK"
	ErrCodeDuplicatePin      Code = "DUPLICATE_PIN"
	ErrCodeCyclicPlan        Code = "CYCLIC_PLAN"
	ErrCodeMissingTemplate   Code = "MISSING_TEMPLATE_OR_GRID"
	ErrCodeSerialization     Code = "SERIALIZATION"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeUnsupported       Code = "UNSUPPORTED"
	ErrCodeInternal          Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// Only the outermost *Error in the chain is inspected.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
