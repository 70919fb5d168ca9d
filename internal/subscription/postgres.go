package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

const subColumns = `id, account_id, plan_id, is_active, start_date, end_date, created_at`

func (s *PGStore) Insert(ctx context.Context, sub *Subscription) error {
	if sub.ID == "" {
		sub.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into subscriptions(id, account_id, plan_id, is_active, start_date, end_date)
		 values($1,$2,$3,$4,$5,$6)`,
		sub.ID, sub.AccountID, sub.PlanID, sub.Active, sub.StartDate, sub.EndDate,
	)
	return err
}

func (s *PGStore) Find(ctx context.Context, id string) (*Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+subColumns+` from subscriptions where id=$1`, id)
	return scanSubscription(row.Scan)
}

func (s *PGStore) FindByAccount(ctx context.Context, accountID string) (*Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+subColumns+` from subscriptions
		 where account_id=$1 order by is_active desc, start_date desc limit 1`, accountID)
	return scanSubscription(row.Scan)
}

func (s *PGStore) ListByAccount(ctx context.Context, accountID string) ([]*Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+subColumns+` from subscriptions where account_id=$1 order by start_date desc`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, sub)
	}
	return res, rows.Err()
}

func (s *PGStore) ListDetailed(ctx context.Context) ([]*Detail, error) {
	rows, err := s.db.QueryContext(ctx, `
		select s.id, s.account_id, s.plan_id, s.is_active, s.start_date, s.end_date, s.created_at,
		       a.username, a.email, p.name, p.price
		from subscriptions s
		join accounts a on a.id = s.account_id
		join plans p on p.id = s.plan_id
		order by s.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(
			&d.ID, &d.AccountID, &d.PlanID, &d.Active, &d.StartDate, &d.EndDate, &d.CreatedAt,
			&d.AccountUsername, &d.AccountEmail, &d.PlanName, &d.PlanPrice,
		); err != nil {
			return nil, err
		}
		res = append(res, &d)
	}
	return res, rows.Err()
}

func (s *PGStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`update subscriptions set is_active=$1 where id=$2`, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Delegate(ctx context.Context, parentSub *Subscription, parentID, childID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := lockChildRows(ctx, tx, childID)
	if err != nil {
		return err
	}
	if existing > 0 {
		if _, err := tx.ExecContext(ctx,
			`delete from subscriptions where account_id=$1`, childID); err != nil {
			return err
		}
	}

	// Point-in-time copy: later changes to the parent's row do not propagate.
	if _, err := tx.ExecContext(ctx,
		`insert into subscriptions(id, account_id, plan_id, is_active, start_date, end_date)
		 values($1,$2,$3,$4,$5,$6)`,
		ids.New(), childID, parentSub.PlanID, parentSub.Active, parentSub.StartDate, parentSub.EndDate,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`insert into account_groups(id, parent_id, child_id) values($1,$2,$3)`,
		ids.New(), parentID, childID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// lockChildRows locks every subscription row the child holds and reports how
// many exist. A child may carry more than one row (an inactive leftover next
// to a fresh one), so all of them are inspected; any active row aborts the
// delegation. The rows are closed before the caller issues further statements
// on the transaction.
func lockChildRows(ctx context.Context, tx *sql.Tx, childID string) (int, error) {
	rows, err := tx.QueryContext(ctx,
		`select is_active from subscriptions where account_id=$1 for update`, childID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int
	for rows.Next() {
		var active bool
		if err := rows.Scan(&active); err != nil {
			return 0, err
		}
		if active {
			return 0, fmt.Errorf("%w: child already has an active subscription", ErrConflict)
		}
		n++
	}
	return n, rows.Err()
}

func (s *PGStore) LinksByParent(ctx context.Context, parentID string) ([]GroupLink, error) {
	return s.queryLinks(ctx,
		`select id, parent_id, child_id, created_at from account_groups where parent_id=$1`, parentID)
}

func (s *PGStore) LinksByChild(ctx context.Context, childID string) ([]GroupLink, error) {
	return s.queryLinks(ctx,
		`select id, parent_id, child_id, created_at from account_groups where child_id=$1`, childID)
}

func (s *PGStore) queryLinks(ctx context.Context, query string, arg any) ([]GroupLink, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []GroupLink
	for rows.Next() {
		var link GroupLink
		if err := rows.Scan(&link.ID, &link.ParentID, &link.ChildID, &link.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, link)
	}
	return res, rows.Err()
}

func scanSubscription(scan func(...any) error) (*Subscription, error) {
	var sub Subscription
	if err := scan(&sub.ID, &sub.AccountID, &sub.PlanID, &sub.Active, &sub.StartDate, &sub.EndDate, &sub.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}
