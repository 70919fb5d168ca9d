package account

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("account: not found")
	ErrConflict          = errors.New("account: already exists")
	ErrInvalidInput      = errors.New("account: invalid input")
	ErrInvalidCredential = errors.New("account: invalid credential")
)

// Account is an ordinary end-user identity. The credential hash never leaves
// the service boundary.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CredentialHash string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// SysAccount is the administrative identity. It authenticates through the same
// token codec but carries the system flag instead of an entitlement snapshot.
type SysAccount struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	CredentialHash string `json:"-"`
}
