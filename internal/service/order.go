package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/event"
	"github.com/greenleaf-garden/storefront/internal/repository"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
	"github.com/greenleaf-garden/storefront/pkg/pagination"
	"github.com/greenleaf-garden/storefront/pkg/tracing"
)

// PlaceOrderInput holds the contact and fulfillment details of an order.
type PlaceOrderInput struct {
	Fulfillment     domain.Fulfillment
	PromoCode       string
	Email           string
	ContactName     string
	DeliveryAddress string
}

// OrderService turns carts into orders and serves them back to their owner.
type OrderService struct {
	repo      repository.OrderRepository
	carts     *CartService
	checkout  *CheckoutService
	publisher event.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	repo repository.OrderRepository,
	carts *CartService,
	checkout *CheckoutService,
	publisher event.Publisher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		repo:      repo,
		carts:     carts,
		checkout:  checkout,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder prices the caller's cart, stores it as a pending_payment order
// and empties the cart. If the order cannot be stored the cart keeps its
// lines.
func (s *OrderService) PlaceOrder(ctx context.Context, key string, input PlaceOrderInput) (order *domain.Order, err error) {
	ctx, span := tracing.Start(ctx, "OrderService.PlaceOrder",
		attribute.String("order.fulfillment", string(input.Fulfillment)),
	)
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.ContactName = strings.TrimSpace(input.ContactName)
	input.DeliveryAddress = strings.TrimSpace(input.DeliveryAddress)

	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.ContactName == "" {
		return nil, apperrors.InvalidInput("contact name is required")
	}
	if !input.Fulfillment.IsValid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("fulfillment must be %q or %q", domain.FulfillmentPickup, domain.FulfillmentDelivery))
	}
	if input.Fulfillment == domain.FulfillmentDelivery && input.DeliveryAddress == "" {
		return nil, apperrors.InvalidInput("delivery address is required for delivery")
	}
	if input.Fulfillment == domain.FulfillmentPickup {
		input.DeliveryAddress = ""
	}
	// Reject unknown codes before the cart is touched.
	if _, err := s.checkout.discount(input.PromoCode); err != nil {
		return nil, err
	}

	err = s.carts.Drain(ctx, key, func(ctx context.Context, snapshot *domain.Cart) error {
		view := snapshot.View()
		totals, err := s.checkout.price(view.Total, QuoteInput{
			Fulfillment: input.Fulfillment,
			PromoCode:   input.PromoCode,
		})
		if err != nil {
			return err
		}

		now := s.now()
		o := &domain.Order{
			ID:              uuid.New().String(),
			CartKey:         key,
			Items:           view.Items,
			Totals:          totals,
			Currency:        snapshot.Currency,
			Email:           input.Email,
			ContactName:     input.ContactName,
			DeliveryAddress: input.DeliveryAddress,
			Status:          domain.OrderStatusPendingPayment,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	ordersPlacedTotal.WithLabelValues(string(input.Fulfillment)).Inc()

	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("cart_key", key),
		slog.String("fulfillment", string(input.Fulfillment)),
		slog.String("total", order.Totals.Total.StringFixed(2)),
		slog.Int("lines", len(order.Items)),
	)

	return order, nil
}

// GetOrder returns the order if it belongs to key. Orders of other keys are
// reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, key, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.CartKey != key {
		return nil, apperrors.NotFound("order", orderID)
	}
	return order, nil
}

// ListOrders returns one page of key's orders, newest first, and the total.
func (s *OrderService) ListOrders(ctx context.Context, key string, page pagination.Params) ([]domain.Order, int, error) {
	orders, total, err := s.repo.ListByCartKey(ctx, key, page.Offset, page.PerPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}
