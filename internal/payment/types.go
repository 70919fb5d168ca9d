// Package payment records payments made against subscriptions and exposes the
// administrative ledger view.
package payment

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("payment: not found")
	ErrInvalidInput = errors.New("payment: invalid input")
)

// Payment is one recorded payment against a subscription.
type Payment struct {
	ID             string    `json:"id"`
	SubscriptionID string    `json:"subscription_id"`
	Amount         int64     `json:"amount"`
	Method         string    `json:"payment_method"`
	PaidAt         time.Time `json:"payment_date"`
}

// Detail is the administrative view: the payment joined with its
// subscription, plan and account.
type Detail struct {
	Payment
	AccountID       string `json:"account_id"`
	AccountUsername string `json:"username"`
	AccountEmail    string `json:"email"`
	PlanID          string `json:"plan_id"`
	PlanName        string `json:"plan_name"`
	PlanPrice       int64  `json:"plan_price"`
}
