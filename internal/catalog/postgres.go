package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"subcore.org/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL. Tags are kept as a jsonb column.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) CreatePlan(ctx context.Context, p *Plan) error {
	if p.ID == "" {
		p.ID = ids.New()
	}
	tags, _ := json.Marshal(p.Tags)
	_, err := s.db.ExecContext(ctx,
		`insert into plans(id, name, description, price, is_active, tags, trial_days)
		 values($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Name, p.Description, p.Price, p.Active, tags, trialDaysValue(p.TrialDays),
	)
	return err
}

func (s *PGStore) FindPlan(ctx context.Context, id string) (*Plan, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, description, price, is_active, tags, trial_days, created_at
		 from plans where id=$1`, id)
	return scanPlan(row.Scan)
}

func (s *PGStore) ListPlans(ctx context.Context) ([]*Plan, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, description, price, is_active, tags, trial_days, created_at
		 from plans order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Plan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (s *PGStore) UpdatePlan(ctx context.Context, p *Plan) error {
	tags, _ := json.Marshal(p.Tags)
	res, err := s.db.ExecContext(ctx,
		`update plans set name=$1, description=$2, price=$3, is_active=$4, tags=$5, trial_days=$6
		 where id=$7`,
		p.Name, p.Description, p.Price, p.Active, tags, trialDaysValue(p.TrialDays), p.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) CreateResource(ctx context.Context, r *Resource) error {
	if r.ID == "" {
		r.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into resources(id, plan_id, name, description, max) values($1,$2,$3,$4,$5)`,
		r.ID, r.PlanID, r.Name, r.Description, r.Max,
	)
	return err
}

func (s *PGStore) FindResource(ctx context.Context, id string) (*Resource, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, plan_id, name, description, max, created_at from resources where id=$1`, id)
	var r Resource
	if err := row.Scan(&r.ID, &r.PlanID, &r.Name, &r.Description, &r.Max, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *PGStore) ListResources(ctx context.Context) ([]*Resource, error) {
	return s.queryResources(ctx,
		`select id, plan_id, name, description, max, created_at from resources order by created_at`)
}

func (s *PGStore) ListResourcesForPlan(ctx context.Context, planID string) ([]*Resource, error) {
	return s.queryResources(ctx,
		`select id, plan_id, name, description, max, created_at from resources where plan_id=$1 order by name`,
		planID)
}

func (s *PGStore) UpdateResource(ctx context.Context, r *Resource) error {
	res, err := s.db.ExecContext(ctx,
		`update resources set plan_id=$1, name=$2, description=$3, max=$4 where id=$5`,
		r.PlanID, r.Name, r.Description, r.Max, r.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) queryResources(ctx context.Context, query string, args ...any) ([]*Resource, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Resource
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.PlanID, &r.Name, &r.Description, &r.Max, &r.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &r)
	}
	return res, rows.Err()
}

func scanPlan(scan func(...any) error) (*Plan, error) {
	var (
		p     Plan
		tags  []byte
		trial sql.NullInt32
	)
	if err := scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Active, &tags, &trial, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_ = json.Unmarshal(tags, &p.Tags)
	if trial.Valid {
		v := trial.Int32
		p.TrialDays = &v
	}
	return &p, nil
}

func trialDaysValue(v *int32) any {
	if v == nil {
		return nil
	}
	return *v
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
