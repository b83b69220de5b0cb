package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// Fulfillment is how an order reaches the shopper.
type Fulfillment string

const (
	FulfillmentPickup   Fulfillment = "pickup"
	FulfillmentDelivery Fulfillment = "delivery"
)

// IsValid reports whether f is a known fulfillment method.
func (f Fulfillment) IsValid() bool {
	return f == FulfillmentPickup || f == FulfillmentDelivery
}

var hundred = decimal.NewFromInt(100)

// Discount is a promo code resolved to a percentage off the subtotal.
type Discount struct {
	Code    string
	Percent decimal.Decimal
}

// Pricing carries the store-wide checkout settings.
type Pricing struct {
	DeliveryFee decimal.Decimal
	TaxRate     decimal.Decimal
}

// OrderTotal is the checkout breakdown of a cart subtotal.
type OrderTotal struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	DiscountCode string          `json:"discount_code,omitempty"`
	Discount     decimal.Decimal `json:"discount"`
	DeliveryFee  decimal.Decimal `json:"delivery_fee"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Fulfillment  Fulfillment     `json:"fulfillment"`
}

// ComputeOrderTotal prices a subtotal for checkout:
//
//	discount = subtotal * percent / 100
//	taxable  = subtotal - discount
//	tax      = taxable * taxRate
//	total    = round2(taxable + deliveryFee + tax)
//
// Terms are summed at full precision and rounded half away from zero once.
// The reported discount and tax are rounded for display only.
func ComputeOrderTotal(subtotal decimal.Decimal, method Fulfillment, pricing Pricing, discount *Discount) (OrderTotal, error) {
	if !method.IsValid() {
		return OrderTotal{}, apperrors.InvalidInput(fmt.Sprintf("fulfillment must be %q or %q", FulfillmentPickup, FulfillmentDelivery))
	}
	if subtotal.IsNegative() {
		return OrderTotal{}, apperrors.InvalidInput("subtotal must not be negative")
	}

	off := decimal.Zero
	code := ""
	if discount != nil {
		off = subtotal.Mul(discount.Percent).Div(hundred)
		code = discount.Code
	}
	taxable := subtotal.Sub(off)

	fee := decimal.Zero
	if method == FulfillmentDelivery {
		fee = pricing.DeliveryFee
	}
	tax := taxable.Mul(pricing.TaxRate)

	return OrderTotal{
		Subtotal:     subtotal,
		DiscountCode: code,
		Discount:     off.Round(2),
		DeliveryFee:  fee,
		Tax:          tax.Round(2),
		Total:        taxable.Add(fee).Add(tax).Round(2),
		Fulfillment:  method,
	}, nil
}

// MinorUnits converts an amount to integer cents for payment providers.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(hundred).IntPart()
}
