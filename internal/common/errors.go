// Package common defines shared constants and sentinel errors used across
// the userbase server and client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Service-level errors.
	ErrInternal           = errors.New("internal error")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrHashingFailure     = errors.New("password hashing failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation error")

	// Auth errors. Every token validation failure matches ErrInvalidToken.
	ErrInvalidToken = errors.New("invalid token")
)
