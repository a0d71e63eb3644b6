package auth

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrOAuthNotConfigured   = errors.New("google sign-in is not configured")
	ErrOAuthStateMismatch   = errors.New("oauth state mismatch")
	ErrOAuthEmailUnverified = errors.New("google account email is not verified")
	ErrNoAccountForEmail    = errors.New("no account is registered for this email")
	ErrTooManyRequests      = errors.New("too many requests")
)
