package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeStale        ErrorCode = "STALE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches sentinel errors by code and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrKeyNotFound        = NewError(ErrCodeNotFound, "key not found")
	ErrNotAuthenticated   = NewError(ErrCodeUnauthorized, "not authenticated")
	ErrSessionInvalidated = NewError(ErrCodeUnauthorized, "session expired, please log in again")
	ErrForbidden          = NewError(ErrCodeForbidden, "you do not have permission to perform this action")
	ErrInvalidQuantity    = NewError(ErrCodeInvalid, "quantity must be at least 1")
	ErrEmptyCart          = NewError(ErrCodeInvalid, "your cart is empty, please add items before checkout")
	ErrInvalidStatus      = NewError(ErrCodeInvalid, "invalid order status")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrMissingToken       = NewError(ErrCodeInternal, "authentication response did not include a token")
	ErrStaleResponse      = NewError(ErrCodeStale, "response superseded by a newer request")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// Message returns the human-readable text meant for display next to the failed action.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return err.Error()
}

// ValidationError carries field-level messages produced before anything is sent over the wire.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message attached to a field, if any.
func (e *ValidationError) Field(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	msg, ok := e.Fields[name]
	return msg, ok
}
