package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/event"
	"github.com/greenleaf-garden/storefront/internal/provider/payment"
	"github.com/greenleaf-garden/storefront/internal/repository"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
	"github.com/greenleaf-garden/storefront/pkg/tracing"
)

// PayInput holds the parameters for paying an order.
type PayInput struct {
	OrderID string
	Token   string
}

// PaymentService charges orders through the configured provider.
type PaymentService struct {
	repo      repository.PaymentRepository
	orders    repository.OrderRepository
	provider  payment.Provider
	publisher event.Publisher
	logger    *slog.Logger
	locks     *keyedMutex
	now       func() time.Time
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	repo repository.PaymentRepository,
	orders repository.OrderRepository,
	prov payment.Provider,
	publisher event.Publisher,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		repo:      repo,
		orders:    orders,
		provider:  prov,
		publisher: publisher,
		logger:    logger,
		locks:     newKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Pay charges the total of one of key's orders. Charges for the same order
// are serialised, and an order that is already paid is a Conflict. A
// declined charge leaves a failed payment and returns PaymentFailed; a
// provider failure returns an Upstream error and leaves the order as it was.
func (s *PaymentService) Pay(ctx context.Context, key string, input PayInput) (p *domain.Payment, err error) {
	ctx, span := tracing.Start(ctx, "PaymentService.Pay",
		attribute.String("order.id", input.OrderID),
		attribute.String("payment.provider", s.provider.Name()),
	)
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()

	if strings.TrimSpace(input.Token) == "" {
		return nil, apperrors.InvalidInput("payment token is required")
	}

	unlock, err := s.locks.LockContext(ctx, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("wait for order lock: %w", err)
	}
	defer unlock()

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order for payment: %w", err)
	}
	if order.CartKey != key {
		return nil, apperrors.NotFound("order", input.OrderID)
	}
	if order.IsPaid() {
		return nil, apperrors.Conflict(fmt.Sprintf("order %s is already paid", order.ID))
	}

	now := s.now()
	p = &domain.Payment{
		ID:          uuid.New().String(),
		OrderID:     order.ID,
		CartKey:     key,
		Amount:      order.Totals.Total,
		AmountMinor: domain.MinorUnits(order.Totals.Total),
		Currency:    order.Currency,
		Status:      domain.PaymentStatusPending,
		Provider:    s.provider.Name(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	result, err := s.provider.Charge(ctx, &payment.ChargeRequest{
		AmountMinor:    p.AmountMinor,
		Currency:       p.Currency,
		Token:          input.Token,
		IdempotencyKey: p.ID,
		Description:    fmt.Sprintf("Greenleaf order %s", order.ID),
	})
	if err != nil {
		s.fail(ctx, p, "provider error")
		paymentsTotal.WithLabelValues(s.provider.Name(), "error").Inc()

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Upstream("payment provider", err)
	}

	p.ProviderPaymentID = result.ID
	if !result.Succeeded() {
		reason := result.FailureReason
		if reason == "" {
			reason = "payment was declined"
		}
		s.fail(ctx, p, reason)
		paymentsTotal.WithLabelValues(s.provider.Name(), string(domain.PaymentStatusFailed)).Inc()

		s.logger.InfoContext(ctx, "payment declined",
			slog.String("payment_id", p.ID),
			slog.String("order_id", order.ID),
			slog.String("reason", reason),
		)
		return nil, apperrors.PaymentFailed(reason)
	}

	p.Status = domain.PaymentStatusSucceeded
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update payment after charge: %w", err)
	}

	order.Status = domain.OrderStatusPaid
	order.PaymentID = p.ID
	order.UpdatedAt = p.UpdatedAt
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}
	paymentsTotal.WithLabelValues(s.provider.Name(), string(domain.PaymentStatusSucceeded)).Inc()

	if err := s.publisher.PublishPaymentCompleted(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.completed event",
			slog.String("payment_id", p.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "payment succeeded",
		slog.String("payment_id", p.ID),
		slog.String("order_id", order.ID),
		slog.String("provider", p.Provider),
		slog.Int64("amount_minor", p.AmountMinor),
	)

	return p, nil
}

// GetPayment returns a payment made by key.
func (s *PaymentService) GetPayment(ctx context.Context, key, paymentID string) (*domain.Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if p.CartKey != key {
		return nil, apperrors.NotFound("payment", paymentID)
	}
	return p, nil
}

// fail records a failed attempt. Storage errors are only logged because the
// caller is already returning the charge outcome.
func (s *PaymentService) fail(ctx context.Context, p *domain.Payment, reason string) {
	p.Status = domain.PaymentStatusFailed
	p.FailureReason = reason
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "failed to update payment after charge failure",
			slog.String("payment_id", p.ID),
			slog.String("error", err.Error()),
		)
	}
}
