package subscription

import "context"

// Store describes persistence for subscriptions and group links.
type Store interface {
	Insert(ctx context.Context, sub *Subscription) error
	Find(ctx context.Context, id string) (*Subscription, error)
	FindByAccount(ctx context.Context, accountID string) (*Subscription, error)
	ListByAccount(ctx context.Context, accountID string) ([]*Subscription, error)
	ListDetailed(ctx context.Context) ([]*Detail, error)
	SetActive(ctx context.Context, id string, active bool) error

	// Delegate copies the parent's subscription to the child and records the
	// group link. The child's existing subscription is re-checked inside the
	// transaction: an active one aborts with ErrConflict, an inactive one is
	// deleted before the copy is inserted.
	Delegate(ctx context.Context, parentSub *Subscription, parentID, childID string) error

	LinksByParent(ctx context.Context, parentID string) ([]GroupLink, error)
	LinksByChild(ctx context.Context, childID string) ([]GroupLink, error)
}
