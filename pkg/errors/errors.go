// Package errors provides structured error types for pypilens.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library packages
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes mirror the failure taxonomy of the aggregation pipeline:
//   - TRANSIENT_NETWORK: retried automatically by the fetcher, bounded
//   - FATAL_HTTP: not retried; surfaces as a failed source stage
//   - PARSE: malformed payload for one field; defaults applied, never fatal
//   - PIPELINE_FATAL: the primary index-document fetch failed; the record
//     carries the error and remaining stages are skipped
//   - ORCHESTRATOR_ITEM: an uncaught fault from one identity's pipeline,
//     converted to a record-level error and isolated from siblings
//
// # Usage
//
//	err := errors.New(errors.ErrCodePipelineFatal, "no index document for %s", name)
//	if errors.Is(err, errors.ErrCodePipelineFatal) {
//	    // record is unusable beyond the identity field
//	}
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
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Fetch-layer errors
	ErrCodeTransientNetwork Code = "TRANSIENT_NETWORK"
	ErrCodeFatalHTTP        Code = "FATAL_HTTP"
	ErrCodeRateLimited      Code = "RATE_LIMITED"

	// Pipeline errors
	ErrCodeParse            Code = "PARSE"
	ErrCodePipelineFatal    Code = "PIPELINE_FATAL"
	ErrCodeOrchestratorItem Code = "ORCHESTRATOR_ITEM"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
