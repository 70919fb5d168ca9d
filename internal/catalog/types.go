package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("catalog: not found")
	ErrInvalidInput = errors.New("catalog: invalid input")
)

// Plan is a priced offering. TrialDays, when set, drives the end date of
// subscriptions created against the plan.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Active      bool      `json:"is_active"`
	Tags        []string  `json:"tags"`
	TrialDays   *int32    `json:"trial_days,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Resource is a named, capped entitlement unit belonging to exactly one plan.
type Resource struct {
	ID          string    `json:"id"`
	PlanID      string    `json:"plan_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Max         int64     `json:"max"`
	CreatedAt   time.Time `json:"created_at"`
}
