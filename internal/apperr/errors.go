// Package apperr classifies the failure modes surfaced by the domain layer
// so the boundary can translate them into transport status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind enumerates the error classes the domain layer may return.
type Kind int

const (
	// KindValidation marks malformed input; never retried.
	KindValidation Kind = iota + 1
	// KindNotFound marks an id that did not resolve to an entity.
	KindNotFound
	// KindUnauthorized marks a failed role or ownership check.
	KindUnauthorized
	// KindConflict marks an invariant violation such as duplicate membership.
	KindConflict
	// KindStore marks a backing-store failure; the only retriable class.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// Error is a classified domain error with a human-readable message.
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

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a malformed-input error.
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds an unresolved-entity error.
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized builds a failed authorization error.
func Unauthorized(format string, args ...interface{}) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds an invariant-violation error.
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Store wraps a backing-store failure.
func Store(err error, message string) error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// KindOf extracts the classification of err, or 0 when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsNotFound reports whether err is classified as not-found.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsUnauthorized reports whether err is classified as unauthorized.
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }

// IsConflict reports whether err is classified as a conflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsValidation reports whether err is classified as malformed input.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
