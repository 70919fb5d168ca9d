package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"subcore.org/internal/ids"
)

var _ Registry = (*PGRegistry)(nil)

// PGRegistry implements Registry using PostgreSQL. The refresh_sessions table
// carries a unique constraint on account_id, so even a racing replace cannot
// leave two live records.
type PGRegistry struct {
	db *sql.DB
}

func NewPGRegistry(db *sql.DB) *PGRegistry {
	return &PGRegistry{db: db}
}

func (r *PGRegistry) Replace(ctx context.Context, accountID, token string) error {
	if accountID == "" || token == "" {
		return fmt.Errorf("%w: account id and token are required", ErrInvalidInput)
	}
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`delete from refresh_sessions where account_id=$1`, accountID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`insert into refresh_sessions(id, account_id, token) values($1,$2,$3)`,
		ids.New(), accountID, token); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRegistry) Consume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnknownToken
	}
	var accountID string
	err := r.db.QueryRowContext(ctx,
		`select account_id from refresh_sessions where token=$1`, token).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUnknownToken
	}
	if err != nil {
		return "", err
	}
	return accountID, nil
}
