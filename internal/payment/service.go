package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"subcore.org/internal/subscription"
)

// SubscriptionSource verifies the target subscription exists before a payment
// is recorded against it.
type SubscriptionSource interface {
	Get(ctx context.Context, id string) (*subscription.Subscription, error)
}

// Service records payments and serves the administrative ledger.
type Service struct {
	store Store
	subs  SubscriptionSource
}

func NewService(store Store, subs SubscriptionSource) (*Service, error) {
	if store == nil || subs == nil {
		return nil, fmt.Errorf("%w: store and subscription source are required", ErrInvalidInput)
	}
	return &Service{store: store, subs: subs}, nil
}

// RecordParams carries the fields of a new payment.
type RecordParams struct {
	SubscriptionID string
	Amount         int64
	Method         string
}

func (s *Service) Record(ctx context.Context, p RecordParams) (*Payment, error) {
	p.SubscriptionID = strings.TrimSpace(p.SubscriptionID)
	p.Method = strings.TrimSpace(p.Method)
	if p.SubscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription id is required", ErrInvalidInput)
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if p.Method == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrInvalidInput)
	}
	if _, err := s.subs.Get(ctx, p.SubscriptionID); err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			return nil, fmt.Errorf("%w: subscription %s", ErrNotFound, p.SubscriptionID)
		}
		return nil, err
	}
	payment := &Payment{
		SubscriptionID: p.SubscriptionID,
		Amount:         p.Amount,
		Method:         p.Method,
	}
	if err := s.store.Insert(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *Service) ListDetailed(ctx context.Context) ([]*Detail, error) {
	return s.store.ListDetailed(ctx)
}
