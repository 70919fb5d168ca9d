package auth

import "errors"

var (
	// ErrInvalidCredential covers both an unknown account and a wrong secret;
	// callers must not be able to tell the two apart.
	ErrInvalidCredential = errors.New("auth: invalid credential")

	// ErrUnauthorized covers every token failure: missing, malformed, expired,
	// forged, or a refresh token that was already replaced.
	ErrUnauthorized = errors.New("auth: unauthorized")

	ErrInvalidInput = errors.New("auth: invalid input")
)
