package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/event"
	"github.com/greenleaf-garden/storefront/internal/provider/mailinglist"
	"github.com/greenleaf-garden/storefront/internal/provider/payment"
	"github.com/greenleaf-garden/storefront/internal/repository/memory"
	"github.com/greenleaf-garden/storefront/internal/service"
	"github.com/greenleaf-garden/storefront/pkg/health"
	"github.com/greenleaf-garden/storefront/pkg/httputil"
	"github.com/greenleaf-garden/storefront/pkg/middleware"
)

const (
	jalapenoID   = "3f6c1a52-8f0e-4d1b-9a37-1c2e5d7b9a01" // 3.49
	wildflowerID = "3f6c1a52-8f0e-4d1b-9a37-1c2e5d7b9a04" // out of stock
	shearsID     = "3f6c1a52-8f0e-4d1b-9a37-1c2e5d7b9a12" // 27.50
	potID        = "3f6c1a52-8f0e-4d1b-9a37-1c2e5d7b9a16" // 19.00
	unknownID    = "00000000-0000-4000-8000-000000000000"
)

type promoTable map[string]string

func (p promoTable) Lookup(code string) (*domain.Discount, bool) {
	pct, ok := p[code]
	if !ok {
		return nil, false
	}
	return &domain.Discount{Code: code, Percent: decimal.RequireFromString(pct)}, true
}

// --- Test Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupRouter builds the production router over fresh in-memory stores.
func setupRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()

	logger := testLogger()
	catalogRepo, err := memory.NewProductRepository()
	require.NoError(t, err)
	orderRepo := memory.NewOrderRepository()
	publisher := event.Noop{}

	catalog := service.NewCatalogService(catalogRepo, logger)
	carts := service.NewCartService(memory.NewCartRepository(), catalogRepo, publisher, logger, "USD")
	checkout := service.NewCheckoutService(carts, domain.Pricing{
		DeliveryFee: decimal.RequireFromString("5.00"),
		TaxRate:     decimal.RequireFromString("0.08"),
	}, promoTable{"SPRING10": "10"})

	svc := Services{
		Cart:       carts,
		Catalog:    catalog,
		Checkout:   checkout,
		Orders:     service.NewOrderService(orderRepo, carts, checkout, publisher, logger),
		Payments:   service.NewPaymentService(memory.NewPaymentRepository(), orderRepo, payment.NewMock(), publisher, logger),
		Newsletter: service.NewNewsletterService(memory.NewSubscriberRepository(), mailinglist.NewMock(logger), publisher, logger),
		Wishlist:   service.NewWishlistService(memory.NewWishlistRepository(), catalog, logger),
	}

	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS, cfg.RateLimitBurst = 1000, 1000
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRouter(ctx, svc, health.NewHandler(), logger, cfg)
}

// do sends a request as the shopper identified by user ("" for anonymous).
func do(t *testing.T, h http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(middleware.UserIDHeader, user)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// decodeData decodes the envelope's data member into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

func addItem(t *testing.T, h http.Handler, user, productID string, qty int) cartResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/cart/items", user, map[string]any{"product_id": productID, "quantity": qty})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cart cartResponse
	decodeData(t, rec, &cart)
	return cart
}

// --- Cart ---

func TestCart_RequiresIdentity(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/api/v1/cart", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestCart_GuestSession(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", http.NoBody)
	req.Header.Set(middleware.SessionIDHeader, "guest-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestCart_EmptyView(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/api/v1/cart", "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var cart cartResponse
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.Total)
	assert.Zero(t, cart.ItemCount)
	assert.Equal(t, "USD", cart.Currency)
}

func TestCart_LedgerFlow(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	addItem(t, h, "u1", jalapenoID, 1)
	addItem(t, h, "u1", shearsID, 1)
	cart := addItem(t, h, "u1", potID, 1)

	assert.Len(t, cart.Items, 3)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, "49.99", cart.Total)

	// Re-adding merges into the existing line.
	cart = addItem(t, h, "u1", jalapenoID, 2)
	require.Len(t, cart.Items, 3)
	line := cart.Items[0]
	assert.Equal(t, jalapenoID, line.ProductID)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, "3.49", line.UnitPrice)
	assert.Equal(t, "10.47", line.LineTotal)
	assert.Equal(t, "56.97", cart.Total)

	// Absolute set.
	rec := do(t, h, http.MethodPut, "/api/v1/cart/items/"+line.ID, "u1", map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cart)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "63.95", cart.Total)

	// Zero removes.
	rec = do(t, h, http.MethodPut, "/api/v1/cart/items/"+line.ID, "u1", map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "item removed from cart", resp.Message)

	rec = do(t, h, http.MethodGet, "/api/v1/cart", "u1", nil)
	decodeData(t, rec, &cart)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "46.50", cart.Total)

	// Explicit removal.
	rec = do(t, h, http.MethodDelete, "/api/v1/cart/items/"+cart.Items[0].ID, "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cart)
	require.Len(t, cart.Items, 1)

	// Clear.
	rec = do(t, h, http.MethodDelete, "/api/v1/cart", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.Total)
}

func TestCart_DefaultQuantity(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodPost, "/api/v1/cart/items", "u1", map[string]string{"product_id": jalapenoID})

	require.Equal(t, http.StatusOK, rec.Code)
	var cart cartResponse
	decodeData(t, rec, &cart)
	assert.Equal(t, 1, cart.ItemCount)
}

func TestCart_AddItemRejections(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"missing product", map[string]any{"quantity": 1}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"zero quantity", map[string]any{"product_id": jalapenoID, "quantity": 0}, http.StatusBadRequest, "INVALID_INPUT"},
		{"negative quantity", map[string]any{"product_id": jalapenoID, "quantity": -1}, http.StatusBadRequest, "INVALID_INPUT"},
		{"over the line cap", map[string]any{"product_id": jalapenoID, "quantity": 101}, http.StatusBadRequest, "INVALID_INPUT"},
		{"out of stock", map[string]any{"product_id": wildflowerID}, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown product", map[string]any{"product_id": unknownID}, http.StatusNotFound, "NOT_FOUND"},
		{"malformed body", "not an object", http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupRouter(t, RouterConfig{})

			rec := do(t, h, http.MethodPost, "/api/v1/cart/items", "u1", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)

			rec = do(t, h, http.MethodGet, "/api/v1/cart", "u1", nil)
			var cart cartResponse
			decodeData(t, rec, &cart)
			assert.Empty(t, cart.Items)
		})
	}
}

func TestCart_UnknownLine(t *testing.T) {
	h := setupRouter(t, RouterConfig{})
	addItem(t, h, "u1", jalapenoID, 2)

	rec := do(t, h, http.MethodPut, "/api/v1/cart/items/nope", "u1", map[string]int{"quantity": 5})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/cart/items/nope", "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/cart", "u1", nil)
	var cart cartResponse
	decodeData(t, rec, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCart_UpdateRequiresQuantity(t *testing.T) {
	h := setupRouter(t, RouterConfig{})
	cart := addItem(t, h, "u1", jalapenoID, 2)

	rec := do(t, h, http.MethodPut, "/api/v1/cart/items/"+cart.Items[0].ID, "u1", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Fields, "quantity")
}

// --- Checkout & orders ---

func fillExampleCart(t *testing.T, h http.Handler, user string) {
	t.Helper()
	addItem(t, h, user, jalapenoID, 1)
	addItem(t, h, user, shearsID, 1)
	addItem(t, h, user, potID, 1)
}

func TestCheckoutQuote(t *testing.T) {
	h := setupRouter(t, RouterConfig{})
	fillExampleCart(t, h, "u1")

	rec := do(t, h, http.MethodPost, "/api/v1/checkout/quote", "u1", map[string]string{"fulfillment": "delivery"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote quoteResponse
	decodeData(t, rec, &quote)
	assert.Equal(t, "49.99", quote.Subtotal)
	assert.Equal(t, "5.00", quote.DeliveryFee)
	assert.Equal(t, "4.00", quote.Tax)
	assert.Equal(t, "58.99", quote.Total)
	assert.Equal(t, "delivery", quote.Fulfillment)
	assert.Len(t, quote.Cart.Items, 3)
}

func TestCheckoutQuote_Rejections(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodPost, "/api/v1/checkout/quote", "u1", map[string]string{"fulfillment": "pickup"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty cart")

	fillExampleCart(t, h, "u1")

	rec = do(t, h, http.MethodPost, "/api/v1/checkout/quote", "u1", map[string]string{"fulfillment": "drone"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/checkout/quote", "u1", map[string]string{"fulfillment": "pickup", "promo_code": "BOGUS"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrders_PlacePayAndRead(t *testing.T) {
	h := setupRouter(t, RouterConfig{})
	fillExampleCart(t, h, "u1")

	rec := do(t, h, http.MethodPost, "/api/v1/orders", "u1", map[string]string{
		"fulfillment":      "delivery",
		"email":            "ann@example.com",
		"contact_name":     "Ann",
		"delivery_address": "12 Elm Street",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order orderResponse
	decodeData(t, rec, &order)
	assert.Equal(t, "pending_payment", order.Status)
	assert.Equal(t, "58.99", order.Total)
	assert.Len(t, order.Items, 3)

	// The cart was emptied.
	rec = do(t, h, http.MethodGet, "/api/v1/cart", "u1", nil)
	var cart cartResponse
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)

	// Pay.
	rec = do(t, h, http.MethodPost, "/api/v1/payments", "u1", map[string]string{"order_id": order.ID, "token": "tok_visa"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p paymentResponse
	decodeData(t, rec, &p)
	assert.Equal(t, "succeeded", p.Status)
	assert.Equal(t, "58.99", p.Amount)
	assert.Equal(t, int64(5899), p.AmountMinor)

	// Paying twice conflicts.
	rec = do(t, h, http.MethodPost, "/api/v1/payments", "u1", map[string]string{"order_id": order.ID, "token": "tok_visa"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/orders/"+order.ID, "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &order)
	assert.Equal(t, "paid", order.Status)
	assert.Equal(t, p.ID, order.PaymentID)

	rec = do(t, h, http.MethodGet, "/api/v1/payments/"+p.ID, "u1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another shopper sees nothing.
	rec = do(t, h, http.MethodGet, "/api/v1/orders/"+order.ID, "u2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/payments/"+p.ID, "u2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/orders?page=1&per_page=10", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items      []orderResponse `json:"items"`
		TotalCount int             `json:"total_count"`
	}
	decodeData(t, rec, &page)
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
}

func TestOrders_DeliveryNeedsAddress(t *testing.T) {
	h := setupRouter(t, RouterConfig{})
	fillExampleCart(t, h, "u1")

	rec := do(t, h, http.MethodPost, "/api/v1/orders", "u1", map[string]string{
		"fulfillment":  "delivery",
		"email":        "ann@example.com",
		"contact_name": "Ann",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "delivery_address")
}

func TestOrders_InvalidID(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/api/v1/orders/not-a-uuid", "u1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestPayments_DeclineAndProviderError(t *testing.T) {
	h := setupRouter(t, RouterConfig{})
	fillExampleCart(t, h, "u1")

	rec := do(t, h, http.MethodPost, "/api/v1/orders", "u1", map[string]string{
		"fulfillment":  "pickup",
		"email":        "ann@example.com",
		"contact_name": "Ann",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order orderResponse
	decodeData(t, rec, &order)

	rec = do(t, h, http.MethodPost, "/api/v1/payments", "u1", map[string]string{"order_id": order.ID, "token": "tok_decline"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PAYMENT_FAILED", resp.Error.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/payments", "u1", map[string]string{"order_id": order.ID, "token": "tok_error"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/payments", "u1", map[string]string{"order_id": "nope", "token": "tok_visa"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Catalog ---

func TestProducts_ListAndCache(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/api/v1/products?category=seeds&per_page=2", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	var page struct {
		Items      []productResponse `json:"items"`
		TotalCount int               `json:"total_count"`
		HasNext    bool              `json:"has_next"`
	}
	decodeData(t, rec, &page)
	assert.Equal(t, 4, page.TotalCount)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasNext)
	assert.Equal(t, "3.49", page.Items[0].Price)
}

func TestProducts_Search(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/api/v1/products?q=maple", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []productResponse `json:"items"`
	}
	decodeData(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Japanese Maple", page.Items[0].Name)
}

func TestProducts_GetByIDOrSlug(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/api/v1/products/"+jalapenoID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p productResponse
	decodeData(t, rec, &p)

	rec = do(t, h, http.MethodGet, "/api/v1/products/"+p.Slug, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bySlug productResponse
	decodeData(t, rec, &bySlug)
	assert.Equal(t, p.ID, bySlug.ID)

	rec = do(t, h, http.MethodGet, "/api/v1/products/no-such-thing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategories(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/api/v1/categories", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var categories []domain.Category
	decodeData(t, rec, &categories)
	assert.Len(t, categories, 6)
}

// --- Newsletter ---

func TestNewsletter(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodPost, "/api/v1/newsletter/subscribe", "", map[string]string{"email": "ann@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sub subscriberResponse
	decodeData(t, rec, &sub)
	assert.Equal(t, "subscribed", sub.Status)

	rec = do(t, h, http.MethodPost, "/api/v1/newsletter/subscribe", "", map[string]string{"email": "ann@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/newsletter/subscribe", "", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/newsletter/subscribe", "", map[string]string{"email": "bob" + mailinglist.FailingDomain})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// --- Wishlist ---

func TestWishlist(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodPost, "/api/v1/wishlist/"+potID, "u1", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/wishlist/"+potID, "u1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var item wishlistItemResponse
	decodeData(t, rec, &item)
	assert.Equal(t, "exists", item.Status)

	rec = do(t, h, http.MethodPost, "/api/v1/wishlist/"+unknownID, "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/wishlist", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list wishlistResponse
	decodeData(t, rec, &list)
	assert.Equal(t, []string{potID}, list.ProductIDs)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "19.00", list.Products[0].Price)

	rec = do(t, h, http.MethodDelete, "/api/v1/wishlist/"+potID, "u1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/v1/wishlist/"+potID, "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Edge ---

func TestRateLimit_MutatingRoutes(t *testing.T) {
	h := setupRouter(t, RouterConfig{RateLimitRPS: 0.001, RateLimitBurst: 1})

	rec := do(t, h, http.MethodPost, "/api/v1/newsletter/subscribe", "", map[string]string{"email": "ann@example.com"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/newsletter/subscribe", "", map[string]string{"email": "bob@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Reads are not limited.
	rec = do(t, h, http.MethodGet, "/api/v1/categories", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := setupRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_http_requests_total")
}

func TestCORS_Preflight(t *testing.T) {
	h := setupRouter(t, RouterConfig{AllowedOrigins: []string{"https://shop.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart/items", http.NoBody)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListEndpoints_HugePageIsEmpty(t *testing.T) {
	h := setupRouter(t, RouterConfig{})
	const query = "?page=100000000000000000&per_page=100"

	for _, path := range []string{"/api/v1/products" + query, "/api/v1/orders" + query} {
		rec := do(t, h, http.MethodGet, path, "u1", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var page struct {
			Items   []json.RawMessage `json:"items"`
			HasNext bool              `json:"has_next"`
		}
		decodeData(t, rec, &page)
		assert.Empty(t, page.Items, path)
		assert.False(t, page.HasNext, path)
	}
}
