package domain

import "errors"

// Sentinel errors for the auth/user flows. Services return these; the HTTP
// layer maps them to the response envelope with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBlocked     = errors.New("account blocked")
	ErrInvalidToken       = errors.New("invalid token")
	// ErrTokenReuseDetected means a rotated-out refresh token came back.
	// Treated as theft: all sessions of the owner get revoked.
	ErrTokenReuseDetected = errors.New("refresh token reuse detected")
	ErrTwoFactorRequired  = errors.New("two-factor code required")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("email already registered")
)
