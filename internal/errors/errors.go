// Package errors provides standardized domain errors with codes for romstack.
//
// Usage:
//
//	// In services - return typed errors
//	if idx.Empty() {
//	    return errors.CatalogEmpty("no usable entries in gamelist")
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrCatalogParse) {
//	    log.Error("cannot read catalog")
//	    os.Exit(errors.ExitCode(err))
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION"
	CodeConflict     Code = "CONFLICT"
	CodeCatalogParse Code = "CATALOG_PARSE"
	CodeCatalogEmpty Code = "CATALOG_EMPTY"
	CodeScan         Code = "SCAN"
	CodeCopy         Code = "COPY"
	CodeStore        Code = "STORE"
	CodeSearch       Code = "SEARCH"
	CodeInternal     Code = "INTERNAL"
)

// ExitCode returns the process exit code for an error code.
func (c Code) ExitCode() int {
	switch c {
	case CodeValidation:
		return 2
	case CodeNotFound:
		return 3
	case CodeCatalogParse, CodeCatalogEmpty:
		return 4
	default:
		return 1
	}
}

// ExitCode maps any error to a process exit code. Non-domain errors
// map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code.ExitCode()
	}
	return 1
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrCatalogParse = &Error{Code: CodeCatalogParse, Message: "catalog parse error"}
	ErrCatalogEmpty = &Error{Code: CodeCatalogEmpty, Message: "catalog empty"}
	ErrScan         = &Error{Code: CodeScan, Message: "scan error"}
	ErrCopy         = &Error{Code: CodeCopy, Message: "copy error"}
	ErrStore        = &Error{Code: CodeStore, Message: "store error"}
	ErrSearch       = &Error{Code: CodeSearch, Message: "search error"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Conflictf creates a conflict error with formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// CatalogParse creates a catalog parse error.
func CatalogParse(msg string) *Error {
	return &Error{Code: CodeCatalogParse, Message: msg}
}

// CatalogParsef creates a catalog parse error with formatted message.
func CatalogParsef(format string, args ...any) *Error {
	return &Error{Code: CodeCatalogParse, Message: fmt.Sprintf(format, args...)}
}

// CatalogEmpty creates a catalog empty error.
func CatalogEmpty(msg string) *Error {
	return &Error{Code: CodeCatalogEmpty, Message: msg}
}

// Scan creates a scan error.
func Scan(msg string) *Error {
	return &Error{Code: CodeScan, Message: msg}
}

// Scanf creates a scan error with formatted message.
func Scanf(format string, args ...any) *Error {
	return &Error{Code: CodeScan, Message: fmt.Sprintf(format, args...)}
}

// Copy creates a copy error.
func Copy(msg string) *Error {
	return &Error{Code: CodeCopy, Message: msg}
}

// Copyf creates a copy error with formatted message.
func Copyf(format string, args ...any) *Error {
	return &Error{Code: CodeCopy, Message: fmt.Sprintf(format, args...)}
}

// Store creates a store error.
func Store(msg string) *Error {
	return &Error{Code: CodeStore, Message: msg}
}

// Storef creates a store error with formatted message.
func Storef(format string, args ...any) *Error {
	return &Error{Code: CodeStore, Message: fmt.Sprintf(format, args...)}
}

// Search creates a search error.
func Search(msg string) *Error {
	return &Error{Code: CodeSearch, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
