package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/service"
	"github.com/greenleaf-garden/storefront/pkg/httputil"
	"github.com/greenleaf-garden/storefront/pkg/middleware"
	"github.com/greenleaf-garden/storefront/pkg/pagination"
	"github.com/greenleaf-garden/storefront/pkg/validator"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// PlaceOrderRequest is the JSON request body for placing an order from the
// caller's cart.
type PlaceOrderRequest struct {
	Fulfillment     string `json:"fulfillment" validate:"required,oneof=pickup delivery"`
	PromoCode       string `json:"promo_code" validate:"max=32"`
	Email           string `json:"email" validate:"required,email,max=254"`
	ContactName     string `json:"contact_name" validate:"required,max=120"`
	DeliveryAddress string `json:"delivery_address" validate:"required_if=Fulfillment delivery,max=500"`
}

// PlaceOrder handles POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), middleware.CartKeyFromContext(r.Context()), service.PlaceOrderInput{
		Fulfillment:     domain.Fulfillment(req.Fulfillment),
		PromoCode:       req.PromoCode,
		Email:           req.Email,
		ContactName:     req.ContactName,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, toOrderResponse(order), "order placed")
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	orders, total, err := h.service.ListOrders(r.Context(), middleware.CartKeyFromContext(r.Context()), page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	items := make([]orderResponse, len(orders))
	for i := range orders {
		items[i] = toOrderResponse(&orders[i])
	}
	httputil.WriteData(w, http.StatusOK, pagination.NewResult(items, total, page), "")
}

// GetOrder handles GET /api/v1/orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "order id", chi.URLParam(r, "orderId"))
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), middleware.CartKeyFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, toOrderResponse(order), "")
}
