// Package errors provides structured error types for atlaspack.
//
// Error codes let the CLI tell apart failures that abort a run (a corrupt
// state file, an unreadable sidecar) from each other and report them
// consistently.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - IO_*: Reading or writing files and stores
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSize, "container size %d is not a power of two", size)
//	if errors.Is(err, errors.ErrCodeInvalidSize) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidState, origErr, "decode %s", path)
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidSize    Code = "INVALID_SIZE"
	ErrCodeInvalidImage   Code = "INVALID_IMAGE"
	ErrCodeInvalidSidecar Code = "INVALID_SIDECAR"
	ErrCodeInvalidState   Code = "INVALID_STATE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeStateNotFound Code = "STATE_NOT_FOUND"

	// I/O errors
	ErrCodeRead  Code = "IO_READ"
	ErrCodeWrite Code = "IO_WRITE"

	// Internal errors
	ErrCodeInternal         Code = "INTERNAL_ERROR"
	ErrCodeUnsupported      Code = "UNSUPPORTED"
	ErrCodeUnsupportedState Code = "UNSUPPORTED_STATE_VERSION"
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

// Process exit codes returned by ExitCode.
const (
	ExitFailure = 1 // unclassified failure
	ExitUsage   = 2 // bad flags, config or container size
	ExitState   = 3 // saved state missing, corrupt or from a newer release
	ExitInput   = 4 // a texture, sidecar or listed file could not be used
)

// ExitCode maps err to the process exit status. Nil maps to zero.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidSize, ErrCodeInvalidConfig, ErrCodeInvalidPath, ErrCodeUnsupported:
		return ExitUsage
	case ErrCodeInvalidState, ErrCodeUnsupportedState, ErrCodeStateNotFound:
		return ExitState
	case ErrCodeInvalidImage, ErrCodeInvalidSidecar, ErrCodeFileNotFound, ErrCodeNotFound:
		return ExitInput
	}
	return ExitFailure
}
