package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenleaf-garden/storefront/internal/service"
	"github.com/greenleaf-garden/storefront/pkg/httputil"
	"github.com/greenleaf-garden/storefront/pkg/middleware"
	"github.com/greenleaf-garden/storefront/pkg/validator"
)

// PaymentHandler handles HTTP requests for payment endpoints.
type PaymentHandler struct {
	service *service.PaymentService
	logger  *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: svc,
		logger:  logger,
	}
}

// PayRequest is the JSON request body for paying an order. Token is the
// provider's payment-method token; it is never logged.
type PayRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
	Token   string `json:"token" validate:"required,max=256"`
}

// Pay handles POST /api/v1/payments
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req PayRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	p, err := h.service.Pay(r.Context(), middleware.CartKeyFromContext(r.Context()), service.PayInput{
		OrderID: req.OrderID,
		Token:   req.Token,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, toPaymentResponse(p), "payment succeeded")
}

// GetPayment handles GET /api/v1/payments/{paymentId}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "payment id", chi.URLParam(r, "paymentId"))
	if !ok {
		return
	}

	p, err := h.service.GetPayment(r.Context(), middleware.CartKeyFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, toPaymentResponse(p), "")
}
