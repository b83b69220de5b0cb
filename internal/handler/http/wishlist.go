package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenleaf-garden/storefront/internal/service"
	"github.com/greenleaf-garden/storefront/pkg/httputil"
	"github.com/greenleaf-garden/storefront/pkg/middleware"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), middleware.CartKeyFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	ids := list.ProductIDs
	if ids == nil {
		ids = []string{}
	}
	httputil.WriteData(w, http.StatusOK, wishlistResponse{
		ProductIDs: ids,
		Products:   toProductResponses(list.Products),
	}, "")
}

// AddItem handles POST /api/v1/wishlist/{productId}
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	added, err := h.service.Add(r.Context(), middleware.CartKeyFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if !added {
		httputil.WriteData(w, http.StatusOK, wishlistItemResponse{ProductID: productID, Status: "exists"}, "product already in wishlist")
		return
	}
	httputil.WriteData(w, http.StatusCreated, wishlistItemResponse{ProductID: productID, Status: "added"}, "product added to wishlist")
}

// RemoveItem handles DELETE /api/v1/wishlist/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.service.Remove(r.Context(), middleware.CartKeyFromContext(r.Context()), productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, wishlistItemResponse{ProductID: productID, Status: "removed"}, "product removed from wishlist")
}
