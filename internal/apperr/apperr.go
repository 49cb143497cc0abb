// Package apperr holds the error kinds shared by every service. Handlers map a kind to an
// HTTP status with errors.Is; the message is safe to show to clients.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBusinessRule = errors.New("business rule violated")
	ErrConflict     = errors.New("conflict")
)

// Error carries a client-facing message and, for validation failures, one message per field.
type Error struct {
	kind    error
	Message string
	Fields  []string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.kind }

func newErr(kind error, format string, args ...any) *Error {
	return &Error{kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error     { return newErr(ErrNotFound, format, args...) }
func Forbidden(format string, args ...any) *Error    { return newErr(ErrForbidden, format, args...) }
func Unauthorized(format string, args ...any) *Error { return newErr(ErrUnauthorized, format, args...) }
func BusinessRule(format string, args ...any) *Error { return newErr(ErrBusinessRule, format, args...) }
func Conflict(format string, args ...any) *Error     { return newErr(ErrConflict, format, args...) }

// Validation builds a validation error; fields may be empty for a single-message failure.
func Validation(msg string, fields ...string) *Error {
	return &Error{kind: ErrValidation, Message: msg, Fields: fields}
}

// Fields returns the per-field messages attached to err, if any.
func Fields(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
