package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service error.  Every kind except StorageUnavailable is
// a caller-facing business rule failure the caller can correct and retry.
type Kind string

const (
	InvalidInput       Kind = "InvalidInput"
	InvalidReference   Kind = "InvalidReference"
	InvalidTransition  Kind = "InvalidTransition"
	ItemNotRemovable   Kind = "ItemNotRemovable"
	OrderClosed        Kind = "OrderClosed"
	AlreadyPaid        Kind = "AlreadyPaid"
	InsufficientTables Kind = "InsufficientTables"
	AlreadyMerged      Kind = "AlreadyMerged"
	Unauthorized       Kind = "Unauthorized"
	StorageUnavailable Kind = "StorageUnavailable"
)

// Error is returned by every Service operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == StorageUnavailable {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of err, or "" when err is not a service error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func fail(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
