package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when no credential source accepts the
	// identifier/secret pair
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProviderUnavailable is returned when the external verifier cannot be
	// reached or fails transiently
	ErrProviderUnavailable = errors.New("auth provider unavailable")

	// ErrSessionNotFound is returned for unknown, expired or revoked tokens
	ErrSessionNotFound = errors.New("session not found")
)
