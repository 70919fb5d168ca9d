package rbac

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (s *PGStore) CreateRole(ctx context.Context, r *Role) error {
	if r.ID == "" {
		r.ID = ids.New()
	}
	err := s.db.QueryRowContext(ctx,
		`insert into roles(id, name, description, created_by)
		 values($1,$2,$3,$4) returning created_at`,
		r.ID, r.Name, r.Description, r.CreatedBy,
	).Scan(&r.CreatedAt)
	return translateUnique(err)
}

func (s *PGStore) UpdateRole(ctx context.Context, id, name, description string) error {
	res, err := s.db.ExecContext(ctx,
		`update roles set name=$1, description=$2 where id=$3`, name, description, id)
	if err != nil {
		return translateUnique(err)
	}
	return requireRow(res)
}

func (s *PGStore) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, description, created_by, created_at from roles order by name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &r)
	}
	return res, rows.Err()
}

func (s *PGStore) CreatePermission(ctx context.Context, p *Permission) error {
	if p.ID == "" {
		p.ID = ids.New()
	}
	err := s.db.QueryRowContext(ctx,
		`insert into permissions(id, name, description)
		 values($1,$2,$3) returning created_at`,
		p.ID, p.Name, p.Description,
	).Scan(&p.CreatedAt)
	return translateUnique(err)
}

func (s *PGStore) ListPermissions(ctx context.Context) ([]*Permission, error) {
	return s.queryPermissions(ctx,
		`select id, name, description, created_at from permissions order by name`)
}

func (s *PGStore) Grant(ctx context.Context, roleID, permissionID string) error {
	_, err := s.db.ExecContext(ctx,
		`insert into role_permissions(id, role_id, permission_id) values($1,$2,$3)`,
		ids.New(), roleID, permissionID)
	return translateUnique(err)
}

func (s *PGStore) PermissionsForRole(ctx context.Context, roleID string) ([]*Permission, error) {
	return s.queryPermissions(ctx, `
		select p.id, p.name, p.description, p.created_at
		from permissions p
		join role_permissions rp on rp.permission_id = p.id
		where rp.role_id = $1
		order by p.name`, roleID)
}

func (s *PGStore) queryPermissions(ctx context.Context, query string, args ...any) ([]*Permission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &p)
	}
	return res, rows.Err()
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
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
