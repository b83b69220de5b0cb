package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/greenleaf-garden/storefront/internal/domain"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// DiscountLookup resolves promo codes to discounts.
type DiscountLookup interface {
	Lookup(code string) (*domain.Discount, bool)
}

// QuoteInput selects how the cart would be fulfilled.
type QuoteInput struct {
	Fulfillment domain.Fulfillment
	PromoCode   string
}

// Quote is the priced view of a cart.
type Quote struct {
	Cart   domain.CartView
	Totals domain.OrderTotal
}

// CheckoutService prices carts. It holds no state of its own.
type CheckoutService struct {
	carts   *CartService
	pricing domain.Pricing
	promos  DiscountLookup
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(carts *CartService, pricing domain.Pricing, promos DiscountLookup) *CheckoutService {
	return &CheckoutService{
		carts:   carts,
		pricing: pricing,
		promos:  promos,
	}
}

// Quote prices the caller's current cart. An empty cart cannot be quoted.
func (s *CheckoutService) Quote(ctx context.Context, key string, input QuoteInput) (*Quote, error) {
	view, err := s.carts.GetCart(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	totals, err := s.price(view.Total, input)
	if err != nil {
		return nil, err
	}
	return &Quote{Cart: view, Totals: totals}, nil
}

// price computes the order total of subtotal for input.
func (s *CheckoutService) price(subtotal decimal.Decimal, input QuoteInput) (domain.OrderTotal, error) {
	d, err := s.discount(input.PromoCode)
	if err != nil {
		return domain.OrderTotal{}, err
	}
	return domain.ComputeOrderTotal(subtotal, input.Fulfillment, s.pricing, d)
}

func (s *CheckoutService) discount(code string) (*domain.Discount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	d, ok := s.promos.Lookup(code)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown promo code %q", code))
	}
	return d, nil
}
