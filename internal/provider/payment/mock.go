package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// Test tokens understood by the mock provider.
const (
	DeclineTokenPrefix = "tok_decline"
	ErrorTokenPrefix   = "tok_error"
)

// Mock is a payment provider for development and tests. Tokens starting
// with DeclineTokenPrefix are declined, tokens starting with ErrorTokenPrefix
// fail as an unreachable gateway would, everything else succeeds.
type Mock struct{}

// NewMock creates a new mock payment provider.
func NewMock() *Mock {
	return &Mock{}
}

// Name returns the provider name.
func (m *Mock) Name() string {
	return "mock"
}

// Charge simulates a gateway charge.
func (m *Mock) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(req.Token, ErrorTokenPrefix):
		return nil, apperrors.Upstream("payment provider", errors.New("mock gateway error"))
	case strings.HasPrefix(req.Token, DeclineTokenPrefix):
		return &ChargeResult{
			ID:            "mock_ch_" + uuid.New().String(),
			Status:        StatusFailed,
			FailureReason: "card declined",
		}, nil
	}

	return &ChargeResult{
		ID:     "mock_ch_" + uuid.New().String(),
		Status: StatusSucceeded,
	}, nil
}

// Unavailable is installed when no payment provider is configured. Every
// charge fails with ServiceUnavailable.
type Unavailable struct{}

// Name returns the provider name.
func (Unavailable) Name() string {
	return "none"
}

// Charge always fails.
func (Unavailable) Charge(context.Context, *ChargeRequest) (*ChargeResult, error) {
	return nil, apperrors.ServiceUnavailable("payments are not configured")
}
