package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/service"
)

// Money goes over the wire as a fixed two-decimal string ("49.99").
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// --- Cart ---

type lineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type cartResponse struct {
	ID        string         `json:"id"`
	Items     []lineResponse `json:"items"`
	Total     string         `json:"total"`
	ItemCount int            `json:"item_count"`
	Currency  string         `json:"currency"`
}

func toLines(items []domain.LineItem) []lineResponse {
	out := make([]lineResponse, len(items))
	for i, l := range items {
		out[i] = lineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: money(l.UnitPrice),
			Quantity:  l.Quantity,
			LineTotal: money(l.LineTotal),
		}
	}
	return out
}

func toCartResponse(v domain.CartView) cartResponse {
	return cartResponse{
		ID:        v.ID,
		Items:     toLines(v.Items),
		Total:     money(v.Total),
		ItemCount: v.ItemCount,
		Currency:  v.Currency,
	}
}

// --- Checkout ---

type totalsResponse struct {
	Subtotal     string `json:"subtotal"`
	DiscountCode string `json:"discount_code,omitempty"`
	Discount     string `json:"discount"`
	DeliveryFee  string `json:"delivery_fee"`
	Tax          string `json:"tax"`
	Total        string `json:"total"`
	Fulfillment  string `json:"fulfillment"`
}

func toTotalsResponse(t domain.OrderTotal) totalsResponse {
	return totalsResponse{
		Subtotal:     money(t.Subtotal),
		DiscountCode: t.DiscountCode,
		Discount:     money(t.Discount),
		DeliveryFee:  money(t.DeliveryFee),
		Tax:          money(t.Tax),
		Total:        money(t.Total),
		Fulfillment:  string(t.Fulfillment),
	}
}

type quoteResponse struct {
	Cart cartResponse `json:"cart"`
	totalsResponse
}

func toQuoteResponse(q *service.Quote) quoteResponse {
	return quoteResponse{
		Cart:           toCartResponse(q.Cart),
		totalsResponse: toTotalsResponse(q.Totals),
	}
}

// --- Orders ---

type orderResponse struct {
	ID              string         `json:"id"`
	Status          string         `json:"status"`
	Items           []lineResponse `json:"items"`
	Currency        string         `json:"currency"`
	Email           string         `json:"email"`
	ContactName     string         `json:"contact_name"`
	DeliveryAddress string         `json:"delivery_address,omitempty"`
	PaymentID       string         `json:"payment_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	totalsResponse
}

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		Status:          string(o.Status),
		Items:           toLines(o.Items),
		Currency:        o.Currency,
		Email:           o.Email,
		ContactName:     o.ContactName,
		DeliveryAddress: o.DeliveryAddress,
		PaymentID:       o.PaymentID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		totalsResponse:  toTotalsResponse(o.Totals),
	}
}

// --- Payments ---

type paymentResponse struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"order_id"`
	Status            string    `json:"status"`
	Amount            string    `json:"amount"`
	AmountMinor       int64     `json:"amount_minor"`
	Currency          string    `json:"currency"`
	Provider          string    `json:"provider"`
	ProviderPaymentID string    `json:"provider_payment_id,omitempty"`
	FailureReason     string    `json:"failure_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func toPaymentResponse(p *domain.Payment) paymentResponse {
	return paymentResponse{
		ID:                p.ID,
		OrderID:           p.OrderID,
		Status:            string(p.Status),
		Amount:            money(p.Amount),
		AmountMinor:       p.AmountMinor,
		Currency:          p.Currency,
		Provider:          p.Provider,
		ProviderPaymentID: p.ProviderPaymentID,
		FailureReason:     p.FailureReason,
		CreatedAt:         p.CreatedAt,
	}
}

// --- Catalog ---

type productResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	InStock     bool   `json:"in_stock"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Category:    p.Category,
		Price:       money(p.Price),
		Description: p.Description,
		ImageURL:    p.ImageURL,
		InStock:     p.InStock,
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	return out
}

// --- Newsletter & wishlist ---

type subscriberResponse struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

type wishlistResponse struct {
	ProductIDs []string          `json:"product_ids"`
	Products   []productResponse `json:"products"`
}

type wishlistItemResponse struct {
	ProductID string `json:"product_id"`
	Status    string `json:"status"`
}
