// Package errors provides structured error types for forcelayout.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, pipeline and engine
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or configuration validation failures
//   - NOT_*: Missing resources and unmet outcomes (NOT_FOUND, NOT_CONVERGED)
//   - INTERNAL_*: Unexpected internal errors
//
// Degenerate geometry (two bodies on the same spot) never produces an error;
// the engine guards it. Non-convergence is reported with [ErrCodeNotConverged]
// together with a usable outcome.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "optimal distance must be positive, got %v", d)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read graph %s", path)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Layout outcome errors
	ErrCodeNotConverged Code = "NOT_CONVERGED"
	ErrCodeCanceled     Code = "CANCELED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// coder is implemented by typed errors that carry a code without being an *Error.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for the outermost *Error or coded error.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
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

// NotConvergedError reports a layout run that hit its iteration cap.
// The positions computed so far are still valid and are returned alongside it.
type NotConvergedError struct {
	Iterations          int     // Iterations executed
	PositionAdjustments float64 // Total movement in the last iteration
	Threshold           float64 // Movement required for convergence
}

// Error implements the error interface.
func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("layout did not converge within %d iterations (movement %.3g, threshold %.3g)",
		e.Iterations, e.PositionAdjustments, e.Threshold)
}

// Code returns the error code for this error type.
func (e *NotConvergedError) Code() Code {
	return ErrCodeNotConverged
}
