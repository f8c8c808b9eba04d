// Package apperrors provides the domain error taxonomy shared by the
// verification, relationship, and notification services. Controllers map
// kinds to HTTP statuses; services never return bare driver errors.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind identifies a class of domain failure.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidState    Kind = "INVALID_STATE"
	KindAuthorization   Kind = "AUTHORIZATION"
	KindDuplicate       Kind = "DUPLICATE"
	KindSelfFollow      Kind = "SELF_FOLLOW"
	KindOperationFailed Kind = "OPERATION_FAILED"
)

// Error is a domain error with a kind and an optional wrapped cause.
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

// NotFound creates an error for an absent account, edge, or notification.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidState creates an error for a transition attempted from the wrong
// state. Losers of a concurrent transition race land here.
func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Authorization creates an error for a caller lacking rights over the
// target entity or institution scope.
func Authorization(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Duplicate creates an error for a violated relationship invariant.
func Duplicate(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

// SelfFollow creates an error for a degenerate follower==target edge.
func SelfFollow() *Error {
	return &Error{Kind: KindSelfFollow, Message: "cannot follow yourself"}
}

// OperationFailed wraps a storage-level failure that survived the retry.
func OperationFailed(err error) *Error {
	return &Error{Kind: KindOperationFailed, Message: "operation failed", Err: err}
}

// KindOf returns the kind of err, or the empty string for non-domain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
