// Package common defines shared constants and sentinel errors used across
// the CondoWay client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Transport-level errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAuthExpiredServerSide means the server issued a token that was
	// already expired at login time. This is a server-side fault and must
	// propagate loudly; it is never retried.
	ErrAuthExpiredServerSide = errors.New("server issued an expired token")

	// ErrNotAuthenticated marks operations that require an active session.
	ErrNotAuthenticated = errors.New("not authenticated")
)
