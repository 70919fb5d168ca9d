// Package session persists the single outstanding refresh token per account.
// Logging in anywhere replaces the previous record, invalidating the refresh
// token issued elsewhere.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnknownToken indicates a refresh token that was never issued or has
	// already been replaced by a newer login.
	ErrUnknownToken = errors.New("session: unknown refresh token")

	ErrInvalidInput = errors.New("session: invalid input")
)

// Session is the server-held record of an account's outstanding refresh token.
type Session struct {
	ID        string
	AccountID string
	Token     string
	CreatedAt time.Time
}

// Registry enforces the zero-or-one-record-per-account invariant.
type Registry interface {
	// Replace deletes any existing record for the account and inserts the new
	// one as a single atomic unit.
	Replace(ctx context.Context, accountID, token string) error
	// Consume resolves the owning account without deleting the record; the
	// session stays valid until it expires or a new login replaces it.
	Consume(ctx context.Context, token string) (accountID string, err error)
}
