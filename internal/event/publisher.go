package event

import (
	"context"

	"github.com/greenleaf-garden/storefront/internal/domain"
)

// Publisher emits storefront domain events. Failures are returned to the
// caller, which logs them; a failed publish never fails the request.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishCartCleared(ctx context.Context, cart *domain.Cart) error
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
	PublishPaymentCompleted(ctx context.Context, payment *domain.Payment) error
	PublishSubscribed(ctx context.Context, sub *domain.Subscriber) error
}

// Noop discards every event. It is used when no brokers are configured.
type Noop struct{}

func (Noop) PublishCartUpdated(context.Context, *domain.Cart) error { return nil }
func (Noop) PublishCartCleared(context.Context, *domain.Cart) error { return nil }
func (Noop) PublishOrderPlaced(context.Context, *domain.Order) error { return nil }
func (Noop) PublishPaymentCompleted(context.Context, *domain.Payment) error { return nil }
func (Noop) PublishSubscribed(context.Context, *domain.Subscriber) error { return nil }
