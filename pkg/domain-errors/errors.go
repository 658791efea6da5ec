// Package domainerrors provides the coded error type used across service
// boundaries. Stores return sentinel errors (pkg/platform/sentinel); services
// translate them into coded domain errors so transports can map them to
// responses without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. Codes are stable API surface: handlers,
// audit events, and clients key off them.
type Code string

const (
	// Engine-specific failure modes.
	CodeSequenceViolation   Code = "sequence_violation"
	CodeInvalidID           Code = "invalid_id"
	CodeDivisionByZero      Code = "division_by_zero"
	CodeOverflow            Code = "overflow"
	CodeNotEntitled         Code = "not_entitled"
	CodeExceedsEntitlement  Code = "exceeds_entitlement"
	CodeSuspended           Code = "suspended"
	CodeInsufficientHolding Code = "insufficient_holding"

	// Ambient codes shared by all modules.
	CodeValidation   Code = "validation_error"
	CodeBadRequest   Code = "bad_request"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeInternal     Code = "internal_error"
)

// Error is a coded error with an operator-facing message and optional cause.
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

// New creates a coded domain error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates an underlying error with a code and message. Returns nil
// when err is nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// Is is a readability alias for HasCode used heavily in handlers.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the outermost code from err, or CodeInternal when err is
// not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
