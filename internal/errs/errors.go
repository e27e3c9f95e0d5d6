// Package errs provides the unified error type used across s3studio.
//
// The storage gateway wraps every native SDK error into *errs.Error before
// returning it. The boundary client inspects the kind only to choose a
// status for its callers; the message it surfaces is always a plain string.
//
// Usage:
//
//	// In a gateway driver, wrap native errors:
//	return errs.Wrap(errs.ErrKindNotFound, "failed to stat object", sdkErr)
//
//	// In a handler, check error kind:
//	if errs.IsNotFound(err) {
//	    http.Error(w, "not found", http.StatusNotFound)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing backend-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no object, no bucket, no prefix
	ErrKindConnectionFailed         // cannot reach the backend (transport)
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindBackend                  // backend rejected or failed the operation
	ErrKindInvalidInput             // bad arguments or config from the caller
	ErrKindPermissionDenied         // access denied / auth failure
	ErrKindSerialization            // a result could not be encoded for the caller
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindBackend:
		return "backend_error"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindSerialization:
		return "serialization_failed"
	default:
		return "unknown"
	}
}

// Error is the error type returned by the storage gateway.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // native SDK error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a missing object or bucket.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a transport failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsBackend reports whether the backend failed or rejected the operation.
func IsBackend(err error) bool {
	return KindOf(err) == ErrKindBackend
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsSerialization reports whether a result could not be encoded.
func IsSerialization(err error) bool {
	return KindOf(err) == ErrKindSerialization
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
