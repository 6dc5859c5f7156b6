// Package common defines shared constants and sentinel errors used across
// client and server layers of the HealthDot registry. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Registry errors. Every rejected mutation maps to exactly one of
	// these so callers can assert on the rejection reason.
	ErrTokenNotFound    = errors.New("token not found")
	ErrTokenExists      = errors.New("token already exists")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrInvalidOperator  = errors.New("invalid operator")

	// Record errors.
	ErrRecordNotFound  = errors.New("record not found")
	ErrRecordFinalized = errors.New("record already finalized")

	// Generic repository / service errors.
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrUnavailable signals the server could not be reached at all.
	ErrUnavailable = errors.New("server unavailable")
)
