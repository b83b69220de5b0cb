package mailinglist

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// FailingDomain makes the mock provider fail, e.g. "ann@fail.test".
const FailingDomain = "@fail.test"

// Mock logs subscriptions and always succeeds, except for addresses at
// FailingDomain which fail as an unreachable provider would.
type Mock struct {
	logger *slog.Logger
}

// NewMock creates a new mock mailing-list provider.
func NewMock(logger *slog.Logger) *Mock {
	return &Mock{logger: logger}
}

// Name returns the name of this provider.
func (m *Mock) Name() string {
	return "mock"
}

// Subscribe records nothing; it only logs.
func (m *Mock) Subscribe(ctx context.Context, email string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.HasSuffix(strings.ToLower(email), FailingDomain) {
		return nil, apperrors.Upstream("mailing list", errors.New("mock provider rejected the call"))
	}

	id := "mock_sub_" + uuid.New().String()
	m.logger.InfoContext(ctx, "mock mailing list: subscribed",
		slog.String("subscription_id", id),
	)
	return &Result{ID: id}, nil
}

// Unavailable is installed when no mailing-list provider is configured.
type Unavailable struct{}

// Name returns the name of this provider.
func (Unavailable) Name() string {
	return "none"
}

// Subscribe always fails.
func (Unavailable) Subscribe(context.Context, string) (*Result, error) {
	return nil, apperrors.ServiceUnavailable("newsletter signup is not configured")
}
