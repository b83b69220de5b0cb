package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/provider/mailinglist"
	"github.com/greenleaf-garden/storefront/internal/provider/payment"
	"github.com/greenleaf-garden/storefront/internal/repository/memory"
)

// Catalog ids from the embedded products.json.
const (
	jalapenoID   = "3f6c1a52-8f0e-4d1b-9a37-1c2e5d7b9a01" // 3.49
	fernID       = "3f6c1a52-8f0e-4d1b-9a37-1c2e5d7b9a05" // 24.00
	snakePlantID = "3f6c1a52-8f0e-4d1b-9a37-1c2e5d7b9a06" // 29.99
	wildflowerID = "3f6c1a52-8f0e-4d1b-9a37-1c2e5d7b9a04" // out of stock
	unknownID    = "00000000-0000-4000-8000-000000000000"
)

// --- Mock Cart Repository ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, key string) (*domain.Cart, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	args := m.Called(ctx, cart, expectedVersion)
	return args.Bool(0), args.Error(1)
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *mockPublisher) PublishCartCleared(ctx context.Context, cart *domain.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockPublisher) PublishPaymentCompleted(ctx context.Context, p *domain.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPublisher) PublishSubscribed(ctx context.Context, sub *domain.Subscriber) error {
	return m.Called(ctx, sub).Error(0)
}

// quietPublisher accepts every event.
func quietPublisher() *mockPublisher {
	p := new(mockPublisher)
	p.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishCartCleared", mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishPaymentCompleted", mock.Anything, mock.Anything).Return(nil).Maybe()
	p.On("PublishSubscribed", mock.Anything, mock.Anything).Return(nil).Maybe()
	return p
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCatalog(t *testing.T) *memory.ProductRepository {
	t.Helper()
	catalog, err := memory.NewProductRepository()
	require.NoError(t, err)
	return catalog
}

// storefront wires every service over fresh in-memory stores.
type storefront struct {
	carts      *CartService
	catalog    *CatalogService
	checkout   *CheckoutService
	orders     *OrderService
	payments   *PaymentService
	newsletter *NewsletterService
	wishlist   *WishlistService

	cartRepo  *memory.CartRepository
	orderRepo *memory.OrderRepository
	publisher *mockPublisher
}

type promoTable map[string]string

func (p promoTable) Lookup(code string) (*domain.Discount, bool) {
	pct, ok := p[code]
	if !ok {
		return nil, false
	}
	return &domain.Discount{Code: code, Percent: d(pct)}, true
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()

	logger := newTestLogger()
	publisher := quietPublisher()
	catalogRepo := newTestCatalog(t)
	cartRepo := memory.NewCartRepository()
	orderRepo := memory.NewOrderRepository()

	catalog := NewCatalogService(catalogRepo, logger)
	carts := NewCartService(cartRepo, catalogRepo, publisher, logger, "USD")
	checkout := NewCheckoutService(carts, domain.Pricing{
		DeliveryFee: d("5.00"),
		TaxRate:     d("0.08"),
	}, promoTable{"SPRING10": "10"})

	return &storefront{
		carts:      carts,
		catalog:    catalog,
		checkout:   checkout,
		orders:     NewOrderService(orderRepo, carts, checkout, publisher, logger),
		payments:   NewPaymentService(memory.NewPaymentRepository(), orderRepo, payment.NewMock(), publisher, logger),
		newsletter: NewNewsletterService(memory.NewSubscriberRepository(), mailinglist.NewMock(logger), publisher, logger),
		wishlist:   NewWishlistService(memory.NewWishlistRepository(), catalog, logger),
		cartRepo:   cartRepo,
		orderRepo:  orderRepo,
		publisher:  publisher,
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
