package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"subcore.org/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const uniqueViolation = "23505"

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

func (s *PGStore) Create(ctx context.Context, a *Account) error {
	if a.ID == "" {
		a.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into accounts(id, username, name, email, credential_hash) values($1,$2,$3,$4,$5)`,
		a.ID, a.Username, a.Name, a.Email, a.CredentialHash,
	)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

func (s *PGStore) Find(ctx context.Context, id string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, name, email, credential_hash, created_at from accounts where id=$1`, id)
	return scanAccount(row)
}

func (s *PGStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, name, email, credential_hash, created_at from accounts where username=$1`, username)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.Username, &a.Name, &a.Email, &a.CredentialHash, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *PGStore) List(ctx context.Context) ([]*Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, username, name, email, credential_hash, created_at from accounts order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Name, &a.Email, &a.CredentialHash, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &a)
	}
	return res, rows.Err()
}

func (s *PGStore) UpdateProfile(ctx context.Context, id, username, name, email string) error {
	res, err := s.db.ExecContext(ctx,
		`update accounts set username=$1, name=$2, email=$3 where id=$4`,
		username, name, email, id,
	)
	if err != nil {
		return translateUnique(err)
	}
	return requireRow(res)
}

func (s *PGStore) UpdateCredential(ctx context.Context, id, credentialHash string) error {
	res, err := s.db.ExecContext(ctx,
		`update accounts set credential_hash=$1 where id=$2`, credentialHash, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) FindSysByUsername(ctx context.Context, username string) (*SysAccount, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, name, credential_hash from sys_accounts where username=$1`, username)
	var sa SysAccount
	if err := row.Scan(&sa.ID, &sa.Username, &sa.Name, &sa.CredentialHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sa, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
