// Package common defines shared constants and sentinel errors used across
// the client and server layers of Daybook. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIdentityRequired is returned when a push or upsert reaches the
	// boundary without an authenticated owner.
	ErrIdentityRequired = errors.New("authenticated owner required")

	// ErrTransport marks a whole-batch network failure: nothing was applied
	// and the batch is safe to retry wholesale.
	ErrTransport = errors.New("transport error")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
