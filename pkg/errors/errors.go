// Package errors provides structured error types for followstreams.
//
// Every failure the engines can report carries a machine-readable [Code], so
// automated callers branch on the kind of failure instead of parsing
// messages:
//
//   - NO_SEED, AMBIGUOUS_SEED, UNKNOWN_SEED: seed selection failures
//   - EMPTY_RINGS: the ring stitcher was given nothing to stitch
//   - MALFORMED_GEOMETRY: a geometry predicate could not evaluate a pair
//   - WORKER_FAILURE: a pool task crashed while building the graph
//   - INVALID_*: input validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoSeed, "no seed feature found: %q", name)
//	if errors.Is(err, errors.ErrCodeNoSeed) {
//	    // ask the user for another lake
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedGeometry, cause, "feature %d", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeDuplicateFeature Code = "DUPLICATE_FEATURE"

	// Seed selection errors
	ErrCodeNoSeed        Code = "NO_SEED"
	ErrCodeAmbiguousSeed Code = "AMBIGUOUS_SEED"
	ErrCodeUnknownSeed   Code = "UNKNOWN_SEED"

	// Geometry errors
	ErrCodeEmptyRings        Code = "EMPTY_RINGS"
	ErrCodeMalformedGeometry Code = "MALFORMED_GEOMETRY"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeWorkerFailure Code = "WORKER_FAILURE"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
	ErrCodeUnsupported   Code = "UNSUPPORTED"
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
// Only the outermost *Error in the chain is compared.
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

// Recoverable reports whether err is a condition the engines absorb and
// count (a malformed geometry pair) rather than a failure that aborts a run.
func Recoverable(err error) bool {
	return Is(err, ErrCodeMalformedGeometry)
}
