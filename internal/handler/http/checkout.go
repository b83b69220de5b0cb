package http

import (
	"log/slog"
	"net/http"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/service"
	"github.com/greenleaf-garden/storefront/pkg/httputil"
	"github.com/greenleaf-garden/storefront/pkg/middleware"
	"github.com/greenleaf-garden/storefront/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// QuoteRequest is the JSON request body for pricing the caller's cart.
type QuoteRequest struct {
	Fulfillment string `json:"fulfillment" validate:"required,oneof=pickup delivery"`
	PromoCode   string `json:"promo_code" validate:"max=32"`
}

// Quote handles POST /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	quote, err := h.service.Quote(r.Context(), middleware.CartKeyFromContext(r.Context()), service.QuoteInput{
		Fulfillment: domain.Fulfillment(req.Fulfillment),
		PromoCode:   req.PromoCode,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, toQuoteResponse(quote), "")
}
