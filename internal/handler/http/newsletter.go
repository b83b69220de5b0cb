package http

import (
	"log/slog"
	"net/http"

	"github.com/greenleaf-garden/storefront/internal/service"
	"github.com/greenleaf-garden/storefront/pkg/httputil"
	"github.com/greenleaf-garden/storefront/pkg/validator"
)

// NewsletterHandler handles newsletter sign-ups.
type NewsletterHandler struct {
	service *service.NewsletterService
	logger  *slog.Logger
}

// NewNewsletterHandler creates a new newsletter HTTP handler.
func NewNewsletterHandler(svc *service.NewsletterService, logger *slog.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		service: svc,
		logger:  logger,
	}
}

// SubscribeRequest is the JSON request body for a newsletter sign-up.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// Subscribe handles POST /api/v1/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	sub, err := h.service.Subscribe(r.Context(), req.Email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, subscriberResponse{Email: sub.Email, Status: sub.Status}, "subscribed to the newsletter")
}
