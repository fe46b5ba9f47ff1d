// Package apperr defines the error taxonomy surfaced by the vidtube core.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can map it to a reported condition.
type Kind string

const (
	// KindInvalidIdentifier marks a malformed entity reference.
	KindInvalidIdentifier Kind = "InvalidIdentifier"
	// KindValidationFailed marks empty required content or a missing field.
	KindValidationFailed Kind = "ValidationFailed"
	// KindNotFound marks an absent resource.
	KindNotFound Kind = "NotFound"
	// KindTargetNotFound marks an absent like or subscription target.
	KindTargetNotFound Kind = "TargetNotFound"
	// KindUnauthorized marks a mutation attempted by someone other than the owner.
	KindUnauthorized Kind = "Unauthorized"
	// KindStoreFailure marks a failed persistence or media call.
	KindStoreFailure Kind = "StoreFailure"
)

// Error carries a Kind, a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf returns an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err, or KindStoreFailure when err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStoreFailure
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsNotFound covers both NotFound and TargetNotFound.
func IsNotFound(err error) bool {
	return Is(err, KindNotFound) || Is(err, KindTargetNotFound)
}

// Message returns the human readable message of err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
