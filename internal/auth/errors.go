package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers malformed, badly signed and expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")

	ErrMissingSecret = errors.New("JWT_SECRET is required")
)
