// Package entitlement builds point-in-time copies of what a subscription
// grants. A snapshot is embedded into access tokens at issuance and is never
// persisted; it goes stale until the next login or refresh.
package entitlement

import "time"

// Subscription is the token-embedded view of an account's subscription.
type Subscription struct {
	ID        string    `json:"id"`
	PlanID    string    `json:"plan_id"`
	Active    bool      `json:"is_active"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Resource is a named, capped entitlement unit resolved from the plan.
type Resource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Max  int64  `json:"max"`
}

// Snapshot joins the account's subscription, if any, with its plan's resource
// set. An account without a subscription yields a valid empty snapshot.
type Snapshot struct {
	Subscription *Subscription `json:"subscription,omitempty"`
	Resources    []Resource    `json:"resources"`
}

// HasSubscription reports whether the snapshot carries a subscription.
func (s Snapshot) HasSubscription() bool {
	return s.Subscription != nil
}
