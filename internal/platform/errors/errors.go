package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork      Kind = "network"
	KindTimeout      Kind = "timeout"
	KindUnauthorized Kind = "unauthorized"
	KindServer       Kind = "server"
	KindValidation   Kind = "validation"
	KindConfig       Kind = "config"
	KindStorage      Kind = "storage"
	KindUnknown      Kind = "unknown"
)

// Error is the classified error surfaced to callers of the connection core.
// Kind is stable and meant for branching; Message is meant for humans.
type Error struct {
	Kind       Kind
	Op         string
	Message    string
	HTTPStatus int
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

// WithStatus attaches the originating HTTP status code.
func (e *Error) WithStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// AsRetryable marks the error as safe to retry.
func (e *Error) AsRetryable() *Error {
	e.Retryable = true
	return e
}

// IsKind checks whether any error in the chain matches the provided kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	for err != nil {
		if errors.As(err, &target) {
			return target.Kind == kind
		}
		err = errors.Unwrap(err)
	}
	return false
}

// KindOf returns the kind of the first classified error in the chain,
// or KindUnknown for plain errors.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether the first classified error in the chain is
// marked retryable. Plain errors are never retryable.
func IsRetryable(err error) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Retryable
	}
	return false
}
