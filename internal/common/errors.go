// Package common defines shared constants and sentinel errors used across
// client and server layers of scanonce. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Ledger errors. A duplicate submission is an expected outcome, not a
	// fault; it still travels as an error value so errors.Is can route it.
	ErrDuplicate = errors.New("code already recorded")

	// Auth errors (invalid, malformed, or expired token).
	ErrInvalidToken = errors.New("invalid token")
)
