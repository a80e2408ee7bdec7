// Package domainerrors defines the coded error type shared across the
// offboarding service. Transport maps codes to HTTP statuses; services branch
// on codes instead of string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for propagation policy decisions.
type Code string

const (
	// CodeValidation covers bad input: malformed filters, hostile filenames,
	// ambiguous targets. Surfaced to callers with detail.
	CodeValidation Code = "validation_error"

	// CodeNotFound covers absent targets where presence was required.
	CodeNotFound Code = "not_found"

	// CodeUpstream covers external system failures: unreachable, timeout,
	// malformed response. Contained at the step that hit them.
	CodeUpstream Code = "upstream_error"

	// CodeForbidden covers authenticated callers lacking the required role.
	CodeForbidden Code = "forbidden"

	// CodeInternal covers bugs and unexpected conditions. Detail is logged
	// server-side and never shown to callers.
	CodeInternal Code = "internal_error"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, defaulting to CodeInternal so
// unclassified failures are never surfaced with detail.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
