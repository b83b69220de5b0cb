package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// Cart limits.
const (
	// MaxQuantityPerLine is the maximum quantity allowed for a single line.
	MaxQuantityPerLine = 100
	// MaxLinesPerCart is the maximum number of distinct products in a cart.
	MaxLinesPerCart = 50
)

// LineItem is one product-quantity-price record within a cart.
type LineItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func (l *LineItem) recompute() {
	l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the ledger of a single shopper, keyed by user or guest session.
// Lines are unique by product and kept in the order they were first added.
type Cart struct {
	ID        string     `json:"id"`
	Key       string     `json:"key"`
	Items     []LineItem `json:"items"`
	Currency  string     `json:"currency"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at,omitzero"`
}

// NewCart returns an empty cart owned by key.
func NewCart(key, currency string, now time.Time) *Cart {
	return &Cart{
		ID:        uuid.NewString(),
		Key:       key,
		Items:     []LineItem{},
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add merges quantity into the line for productID, or appends a new line
// priced at unitPrice. An existing line keeps the price it was created with.
func (c *Cart) Add(productID, name string, unitPrice decimal.Decimal, quantity int) (*LineItem, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}
	if unitPrice.IsNegative() {
		return nil, apperrors.InvalidInput("unit price must not be negative")
	}

	if i := c.FindProduct(productID); i >= 0 {
		line := &c.Items[i]
		if line.Quantity+quantity > MaxQuantityPerLine {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerLine))
		}
		line.Quantity += quantity
		line.recompute()
		return line, nil
	}

	if len(c.Items) >= MaxLinesPerCart {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxLinesPerCart))
	}
	c.Items = append(c.Items, LineItem{
		ID:        uuid.NewString(),
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	})
	line := &c.Items[len(c.Items)-1]
	line.recompute()
	return line, nil
}

// SetQuantity sets the absolute quantity of a line. Zero or less removes it.
func (c *Cart) SetQuantity(lineID string, quantity int) error {
	i := c.FindLine(lineID)
	if i < 0 {
		return apperrors.NotFound("cart item", lineID)
	}
	if quantity <= 0 {
		c.removeAt(i)
		return nil
	}
	if quantity > MaxQuantityPerLine {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	c.Items[i].Quantity = quantity
	c.Items[i].recompute()
	return nil
}

// Remove deletes a line.
func (c *Cart) Remove(lineID string) error {
	i := c.FindLine(lineID)
	if i < 0 {
		return apperrors.NotFound("cart item", lineID)
	}
	c.removeAt(i)
	return nil
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// FindLine returns the index of the line with the given id, or -1.
func (c *Cart) FindLine(lineID string) int {
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			return i
		}
	}
	return -1
}

// FindProduct returns the index of the line for productID, or -1.
func (c *Cart) FindProduct(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Total is the grand total: the sum of all line totals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartView is a read-only snapshot of a cart with its derived aggregates.
type CartView struct {
	ID        string
	Items     []LineItem
	Total     decimal.Decimal
	ItemCount int
	Currency  string
}

// View recomputes every line total and the aggregates from the lines.
func (c *Cart) View() CartView {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	for i := range items {
		items[i].recompute()
	}

	return CartView{
		ID:        c.ID,
		Items:     items,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		Currency:  c.Currency,
	}
}

// Clone returns a deep copy, so stores never share line slices with callers.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Items = make([]LineItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}
