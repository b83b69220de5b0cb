package payment

import (
	"context"
)

// Charge statuses reported by a Provider.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ChargeRequest holds the parameters for charging an order total.
type ChargeRequest struct {
	AmountMinor    int64
	Currency       string
	Token          string
	IdempotencyKey string
	Description    string
}

// ChargeResult holds the result of a charge operation from the payment provider.
// A declined charge is a result with StatusFailed, not an error.
type ChargeResult struct {
	ID            string
	Status        string
	FailureReason string
}

// Succeeded reports whether the provider captured the charge.
func (r *ChargeResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Provider defines the interface for payment gateway integrations.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "remote").
	Name() string

	// Charge captures AmountMinor from the payment method behind Token.
	// Errors mean the outcome is unknown and the charge may be retried.
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
}
