package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Context keys for error values
const (
	AccountIDKey = "account_id"
	ChatIDKey    = "chat_id"
	LoginKey     = "login"
)
