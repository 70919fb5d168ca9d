package payment

import "context"

// Store describes payment persistence.
type Store interface {
	Insert(ctx context.Context, p *Payment) error
	ListDetailed(ctx context.Context) ([]*Detail, error)
}
