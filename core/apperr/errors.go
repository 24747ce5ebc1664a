// Package apperr defines the error kinds surfaced by the relational core.
// Boundary layers map a Kind to a transport status; everything else treats
// these as ordinary wrapped errors.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindConflict         Kind = "conflict"
	KindAlreadyExists    Kind = "already_exists"
	KindInvalidOperation Kind = "invalid_operation"
	KindUnavailable      Kind = "unavailable"
)

// Sentinels for errors.Is matching on kind alone.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrAlreadyExists    = &Error{Kind: KindAlreadyExists}
	ErrInvalidOperation = &Error{Kind: KindInvalidOperation}
	ErrUnavailable      = &Error{Kind: KindUnavailable}
)

// Error carries a Kind, a caller-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for every NotFound regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return newf(KindNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return newf(KindForbidden, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newf(KindConflict, format, args...)
}

func AlreadyExists(format string, args ...interface{}) error {
	return newf(KindAlreadyExists, format, args...)
}

func InvalidOperation(format string, args ...interface{}) error {
	return newf(KindInvalidOperation, format, args...)
}

// Unavailable wraps a store or upstream failure.
func Unavailable(err error, format string, args ...interface{}) error {
	e := newf(KindUnavailable, format, args...)
	e.Err = err
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when
// err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Classify passes application errors through unchanged and wraps anything
// else (driver errors, timeouts) as Unavailable with the given context.
func Classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	return Unavailable(err, "%s", msg)
}
