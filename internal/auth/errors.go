package auth

import "errors"

var (
	// ErrUnauthorized represents missing or invalid session tokens.
	ErrUnauthorized = errors.New("unauthorized")
)
