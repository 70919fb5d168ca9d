package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"subcore.org/internal/account"
	"subcore.org/internal/catalog"
)

// Subscriptions created without a plan-defined trial run for 30 days.
const defaultDurationDays = 30

// PlanSource resolves plans for duration arithmetic.
type PlanSource interface {
	GetPlan(ctx context.Context, id string) (*catalog.Plan, error)
}

// AccountSource resolves accounts by username for delegation.
type AccountSource interface {
	Get(ctx context.Context, username string) (*account.Account, error)
}

// Service drives the subscription state machine and the delegation flow.
type Service struct {
	store    Store
	plans    PlanSource
	accounts AccountSource
	now      func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewService(store Store, plans PlanSource, accounts AccountSource, opts ...Option) (*Service, error) {
	if store == nil || plans == nil || accounts == nil {
		return nil, fmt.Errorf("%w: store, plan source and account source are required", ErrInvalidInput)
	}
	s := &Service{store: store, plans: plans, accounts: accounts, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create inserts an inactive subscription. The end date is start plus the
// plan's trial days when the plan defines a trial, otherwise a standard 30-day
// term. Activation is a separate administrative step so payment or approval
// can gate it.
func (s *Service) Create(ctx context.Context, accountID, planID string) (*Subscription, error) {
	accountID = strings.TrimSpace(accountID)
	planID = strings.TrimSpace(planID)
	if accountID == "" || planID == "" {
		return nil, fmt.Errorf("%w: account id and plan id are required", ErrInvalidInput)
	}
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: plan %s", ErrNotFound, planID)
		}
		return nil, err
	}

	start := s.now().UTC()
	days := defaultDurationDays
	if plan.TrialDays != nil {
		days = int(*plan.TrialDays)
	}
	sub := &Subscription{
		AccountID: accountID,
		PlanID:    plan.ID,
		Active:    false,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, days),
	}
	if err := s.store.Insert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Activate flips the subscription to active. Existence is the only guard; the
// caller sits behind the administrative trust boundary.
func (s *Service) Activate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

// Deactivate flips the subscription to inactive.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: subscription id is required", ErrInvalidInput)
	}
	return s.store.SetActive(ctx, id, active)
}

func (s *Service) Get(ctx context.Context, id string) (*Subscription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: subscription id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

func (s *Service) ListDetailed(ctx context.Context) ([]*Detail, error) {
	return s.store.ListDetailed(ctx)
}

// ListForAccount resolves the username and returns every subscription row the
// account has.
func (s *Service) ListForAccount(ctx context.Context, username string) ([]*Subscription, error) {
	acc, err := s.resolveAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.store.ListByAccount(ctx, acc.ID)
}

// Delegate copies the parent's subscription to the child inside the group
// hierarchy. The child keeps a point-in-time copy; the store performs the
// check-delete-insert-link sequence in one transaction so a caller disconnect
// or a concurrent delegation cannot leave a half-applied state.
func (s *Service) Delegate(ctx context.Context, parentUsername, childUsername string) error {
	parent, err := s.resolveAccount(ctx, parentUsername)
	if err != nil {
		return err
	}
	child, err := s.resolveAccount(ctx, childUsername)
	if err != nil {
		return err
	}
	parentSub, err := s.store.FindByAccount(ctx, parent.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: parent %s has no subscription to delegate", ErrNotFound, parent.Username)
		}
		return err
	}
	return s.store.Delegate(ctx, parentSub, parent.ID, child.ID)
}

// Children lists the group links rooted at the given parent.
func (s *Service) Children(ctx context.Context, parentUsername string) ([]GroupLink, error) {
	parent, err := s.resolveAccount(ctx, parentUsername)
	if err != nil {
		return nil, err
	}
	return s.store.LinksByParent(ctx, parent.ID)
}

func (s *Service) resolveAccount(ctx context.Context, username string) (*account.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	acc, err := s.accounts.Get(ctx, username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, fmt.Errorf("%w: account %s", ErrNotFound, username)
		}
		return nil, err
	}
	return acc, nil
}
