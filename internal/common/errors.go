// Package common defines shared constants and sentinel errors used across
// the server and payout components. Callers should use errors.Is to match
// the sentinel values.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no valid caller identity was presented at all.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller is authenticated but lacks the scope,
	// role or ownership required for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input failed field constraints.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition means the requested status change is not one of
	// the sanctioned expense transitions.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidToken means the bearer token is malformed, expired or
	// signed with the wrong key.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInternal is a generic service-level failure.
	ErrInternal = errors.New("internal error")
)

// Error attaches a caller-facing reason to one of the sentinel kinds above.
// errors.Is(err, kind) still matches, while Error() returns only the reason
// so transport layers can surface it verbatim.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func (e *Error) Unwrap() error { return e.Kind }

// Unauthenticated builds an ErrUnauthenticated with a formatted reason.
func Unauthenticated(format string, args ...any) error {
	return &Error{Kind: ErrUnauthenticated, Reason: fmt.Sprintf(format, args...)}
}

// Forbidden builds an ErrForbidden with a formatted reason.
func Forbidden(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Reason: fmt.Sprintf(format, args...)}
}

// NotFound builds an ErrNotFound with a formatted reason.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Reason: fmt.Sprintf(format, args...)}
}

// Validation builds an ErrValidation with a formatted reason.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Reason: fmt.Sprintf(format, args...)}
}

// InvalidTransition builds an ErrInvalidTransition with a formatted reason.
func InvalidTransition(format string, args ...any) error {
	return &Error{Kind: ErrInvalidTransition, Reason: fmt.Sprintf(format, args...)}
}
