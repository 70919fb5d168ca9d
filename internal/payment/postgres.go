package payment

import (
	"context"
	"database/sql"

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

func (s *PGStore) Insert(ctx context.Context, p *Payment) error {
	if p.ID == "" {
		p.ID = ids.New()
	}
	return s.db.QueryRowContext(ctx,
		`insert into payments(id, subscription_id, amount, payment_method)
		 values($1,$2,$3,$4) returning payment_date`,
		p.ID, p.SubscriptionID, p.Amount, p.Method,
	).Scan(&p.PaidAt)
}

func (s *PGStore) ListDetailed(ctx context.Context) ([]*Detail, error) {
	rows, err := s.db.QueryContext(ctx, `
		select p.id, p.subscription_id, p.amount, p.payment_method, p.payment_date,
		       a.id, a.username, a.email, pl.id, pl.name, pl.price
		from payments p
		join subscriptions s on s.id = p.subscription_id
		join plans pl on pl.id = s.plan_id
		join accounts a on a.id = s.account_id
		order by p.payment_date desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(
			&d.ID, &d.SubscriptionID, &d.Amount, &d.Method, &d.PaidAt,
			&d.AccountID, &d.AccountUsername, &d.AccountEmail,
			&d.PlanID, &d.PlanName, &d.PlanPrice,
		); err != nil {
			return nil, err
		}
		res = append(res, &d)
	}
	return res, rows.Err()
}
