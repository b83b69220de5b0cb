package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/provider/payment"
	"github.com/greenleaf-garden/storefront/internal/repository/memory"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// placeOrder fills key's cart and places a delivery order totalling 63.31.
func placeOrder(t *testing.T, sf *storefront, key string) *domain.Order {
	t.Helper()
	fillCart(t, sf, key)
	order, err := sf.orders.PlaceOrder(context.Background(), key, deliveryOrder())
	require.NoError(t, err)
	return order
}

func TestPay_Succeeds(t *testing.T) {
	sf := newStorefront(t)
	order := placeOrder(t, sf, "user:1")
	ctx := context.Background()

	p, err := sf.payments.Pay(ctx, "user:1", PayInput{OrderID: order.ID, Token: "tok_visa"})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSucceeded, p.Status)
	assert.Equal(t, int64(6331), p.AmountMinor)
	assert.True(t, d("63.31").Equal(p.Amount))
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "mock", p.Provider)
	assert.Contains(t, p.ProviderPaymentID, "mock_ch_")

	paid, err := sf.orders.GetOrder(ctx, "user:1", order.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())
	assert.Equal(t, p.ID, paid.PaymentID)

	stored, err := sf.payments.GetPayment(ctx, "user:1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSucceeded, stored.Status)

	sf.publisher.AssertCalled(t, "PublishPaymentCompleted", mock.Anything, p)
}

func TestPay_AlreadyPaid(t *testing.T) {
	sf := newStorefront(t)
	order := placeOrder(t, sf, "user:1")
	ctx := context.Background()

	_, err := sf.payments.Pay(ctx, "user:1", PayInput{OrderID: order.ID, Token: "tok_visa"})
	require.NoError(t, err)

	_, err = sf.payments.Pay(ctx, "user:1", PayInput{OrderID: order.ID, Token: "tok_visa"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}

func TestPay_Declined(t *testing.T) {
	sf := newStorefront(t)
	order := placeOrder(t, sf, "user:1")
	ctx := context.Background()

	_, err := sf.payments.Pay(ctx, "user:1", PayInput{OrderID: order.ID, Token: payment.DeclineTokenPrefix + "_card"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
	assert.Equal(t, 422, apperrors.HTTPStatus(err))

	unpaid, err := sf.orders.GetOrder(ctx, "user:1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPendingPayment, unpaid.Status)

	// A declined order can be paid with another card.
	p, err := sf.payments.Pay(ctx, "user:1", PayInput{OrderID: order.ID, Token: "tok_visa"})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSucceeded, p.Status)
}

func TestPay_ProviderError(t *testing.T) {
	sf := newStorefront(t)
	order := placeOrder(t, sf, "user:1")
	ctx := context.Background()

	_, err := sf.payments.Pay(ctx, "user:1", PayInput{OrderID: order.ID, Token: payment.ErrorTokenPrefix})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))

	unchanged, err := sf.orders.GetOrder(ctx, "user:1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPendingPayment, unchanged.Status)
	assert.Empty(t, unchanged.PaymentID)
	sf.publisher.AssertNotCalled(t, "PublishPaymentCompleted", mock.Anything, mock.Anything)
}

func TestPay_Unconfigured(t *testing.T) {
	sf := newStorefront(t)
	order := placeOrder(t, sf, "user:1")
	svc := NewPaymentService(memory.NewPaymentRepository(), sf.orderRepo, payment.Unavailable{}, quietPublisher(), newTestLogger())

	_, err := svc.Pay(context.Background(), "user:1", PayInput{OrderID: order.ID, Token: "tok_visa"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))
}

func TestPay_Rejections(t *testing.T) {
	sf := newStorefront(t)
	order := placeOrder(t, sf, "user:1")
	ctx := context.Background()

	_, err := sf.payments.Pay(ctx, "user:1", PayInput{OrderID: order.ID, Token: " "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = sf.payments.Pay(ctx, "session:intruder", PayInput{OrderID: order.ID, Token: "tok_visa"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = sf.payments.Pay(ctx, "user:1", PayInput{OrderID: unknownID, Token: "tok_visa"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetPayment_OtherKeyIsNotFound(t *testing.T) {
	sf := newStorefront(t)
	order := placeOrder(t, sf, "user:1")
	ctx := context.Background()

	p, err := sf.payments.Pay(ctx, "user:1", PayInput{OrderID: order.ID, Token: "tok_visa"})
	require.NoError(t, err)

	_, err = sf.payments.GetPayment(ctx, "user:2", p.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
