// Package errors provides structured error types for outdated.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are grouped by the pipeline stage that raises them:
//   - EMPTY_INPUT, STREAMING_UNSUPPORTED, INVALID_MANIFEST: manifest parsing
//   - REGISTRY_QUERY_FAILED, CLASSIFICATION_FAILED: registry lookups
//   - MISSING_VERSION: manifest rewriting
//   - TOO_MANY_OUTDATED: the outdated-count policy gate
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidManifest, "invalid manifest: %s", path)
//	if errors.Is(err, errors.ErrCodeInvalidManifest) {
//	    // Handle parse error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeClassificationFailed, origErr, "outdated: %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeEmptyInput           Code = "EMPTY_INPUT"
	ErrCodeStreamingUnsupported Code = "STREAMING_UNSUPPORTED"
	ErrCodeInvalidManifest      Code = "INVALID_MANIFEST"
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInvalidPackage       Code = "INVALID_PACKAGE"

	// Registry errors
	ErrCodeRegistryQuery        Code = "REGISTRY_QUERY_FAILED"
	ErrCodeClassificationFailed Code = "CLASSIFICATION_FAILED"
	ErrCodeNotFound             Code = "NOT_FOUND"
	ErrCodeNetwork              Code = "NETWORK_ERROR"

	// Rewrite errors
	ErrCodeMissingVersion Code = "MISSING_VERSION"

	// Policy errors
	ErrCodeTooManyOutdated Code = "TOO_MANY_OUTDATED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Coder is implemented by error types that carry their own code without
// being an *Error.
type Coder interface {
	Code() Code
}

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
// Only the outermost coded error in the chain is considered, so a wrapped
// cause does not change the code of its wrapper.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// Has reports whether any error in the chain carries the given code.
func Has(err error, code Code) bool {
	for err != nil {
		if c, ok := codeOf(err); ok && c == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		if c, ok := codeOf(err); ok {
			return c
		}
		err = errors.Unwrap(err)
	}
	return ""
}

func codeOf(err error) (Code, bool) {
	switch e := err.(type) {
	case *Error:
		return e.Code, true
	case Coder:
		return e.Code(), true
	}
	return "", false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// TooManyOutdatedError is returned when the number of outdated dependencies
// reaches the configured threshold. Classification and reporting succeeded;
// this is a policy failure, not a defect.
type TooManyOutdatedError struct {
	Count     int // Outdated dependencies across all groups
	Threshold int // Configured minimum that trips the gate
}

// Error implements the error interface.
func (e *TooManyOutdatedError) Error() string {
	return fmt.Sprintf("%d outdated dependencies", e.Count)
}

// Code returns the error code for this error type.
func (e *TooManyOutdatedError) Code() Code {
	return ErrCodeTooManyOutdated
}
