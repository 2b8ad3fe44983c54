package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation to the HTTP boundary
type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalidInput Kind = "INVALID_INPUT"
	KindInvalidQuery Kind = "INVALID_QUERY"
	KindConflict     Kind = "CONFLICT"
	KindReadOnly     Kind = "READ_ONLY"
	KindInternal     Kind = "INTERNAL"
)

// Error is the typed error used across the service
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons
var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrInvalidQuery = &Error{Kind: KindInvalidQuery}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrReadOnly     = &Error{Kind: KindReadOnly}
)

func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound builds the error returned for a missing record
func NotFound(collName, id string) *Error {
	return NewError(KindNotFound, "%s with id %s not found", collName, id)
}

// InvalidQuery builds the error returned for a malformed list query
func InvalidQuery(format string, args ...interface{}) *Error {
	return NewError(KindInvalidQuery, format, args...)
}

// ReadOnly builds the error returned for a write to a read-only collection
func ReadOnly(collName string) *Error {
	return NewError(KindReadOnly, "%s is read-only", collName)
}

// InvalidInput builds the error returned for a malformed request body
func InvalidInput(format string, args ...interface{}) *Error {
	return NewError(KindInvalidInput, format, args...)
}

// KindOf returns the kind of err, or KindInternal for untyped errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
