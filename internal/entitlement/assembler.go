package entitlement

import (
	"context"
	"database/sql"
	"errors"
)

// Assembler resolves snapshots from the relational store. The read is
// idempotent and used identically at login and at token refresh.
type Assembler struct {
	db *sql.DB
}

func NewAssembler(db *sql.DB) *Assembler {
	return &Assembler{db: db}
}

// Snapshot loads the account's subscription and, when one exists, the resource
// list of its plan. At most one subscription row is expected per account; an
// active row wins if the invariant was ever violated.
func (a *Assembler) Snapshot(ctx context.Context, accountID string) (Snapshot, error) {
	snap := Snapshot{Resources: []Resource{}}

	row := a.db.QueryRowContext(ctx, `
		select id, plan_id, is_active, start_date, end_date
		from subscriptions
		where account_id=$1
		order by is_active desc, start_date desc
		limit 1
	`, accountID)

	var sub Subscription
	err := row.Scan(&sub.ID, &sub.PlanID, &sub.Active, &sub.StartDate, &sub.EndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	snap.Subscription = &sub

	rows, err := a.db.QueryContext(ctx,
		`select id, name, max from resources where plan_id=$1 order by name`, sub.PlanID)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var res Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Max); err != nil {
			return Snapshot{}, err
		}
		snap.Resources = append(snap.Resources, res)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
