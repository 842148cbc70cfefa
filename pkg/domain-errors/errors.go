// Package domainerrors defines the coded error type shared by every service.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate
// them here so transport layers can map a Code to an HTTP status without
// inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure. Codes are part of the API surface: they
// appear in JSON error envelopes and must stay stable.
type Code string

const (
	// CodeUnauthorized means the caller lacks the role or ownership the
	// operation requires.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound means a referenced donor, request, or interest record does
	// not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict means the record already exists, e.g. a duplicate donor
	// interest submission.
	CodeConflict Code = "conflict"
	// CodeInvalidState means the operation is illegal for the entity's current
	// lifecycle state, e.g. expressing interest in a fulfilled request.
	CodeInvalidState Code = "invalid_state"
	// CodeInvalidInput means malformed caller input that never reaches the
	// store.
	CodeInvalidInput Code = "invalid_input"
	// CodeInvariantViolation means a domain invariant would be broken; model
	// constructors return it and services usually translate it.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal is an unexpected infrastructure failure.
	CodeInternal Code = "internal"
)

// Error is a domain error with a stable code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HasCode reports whether err is (or wraps) a domain error with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the domain.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain code to the HTTP status transport should emit.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidState, CodeInvariantViolation:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
