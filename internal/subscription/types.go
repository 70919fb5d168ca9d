package subscription

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("subscription: not found")
	ErrConflict     = errors.New("subscription: conflict")
	ErrInvalidInput = errors.New("subscription: invalid input")
)

// Subscription links one account to one plan. At most one active subscription
// may exist per account; the store backs this with a partial unique index and
// the delegation path re-checks it inside its transaction.
type Subscription struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	PlanID    string    `json:"plan_id"`
	Active    bool      `json:"is_active"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupLink is a directed edge from a parent account to a child account,
// recorded when a subscription is delegated.
type GroupLink struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	ChildID   string    `json:"child_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Detail is the administrative view joining the subscription with its account
// and plan.
type Detail struct {
	Subscription
	AccountUsername string `json:"account_username"`
	AccountEmail    string `json:"account_email"`
	PlanName        string `json:"plan_name"`
	PlanPrice       int64  `json:"plan_price"`
}
