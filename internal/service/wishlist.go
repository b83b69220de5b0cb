package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/repository"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// Wishlist is a shopper's saved products in the order they were saved.
type Wishlist struct {
	ProductIDs []string
	Products   []domain.Product
}

// WishlistService manages per-key wishlists of catalog products.
type WishlistService struct {
	repo    repository.WishlistRepository
	catalog *CatalogService
	logger  *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(repo repository.WishlistRepository, catalog *CatalogService, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// List returns the saved product ids and the products the catalog still carries.
func (s *WishlistService) List(ctx context.Context, key string) (*Wishlist, error) {
	ids, err := s.repo.List(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}

	products, err := s.catalog.GetProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &Wishlist{ProductIDs: ids, Products: products}, nil
}

// Add saves a catalog product. Saving a product twice is not an error; the
// result reports whether it was newly added.
func (s *WishlistService) Add(ctx context.Context, key, productID string) (bool, error) {
	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		return false, fmt.Errorf("get product for wishlist: %w", err)
	}

	added, err := s.repo.Add(ctx, key, productID)
	if err != nil {
		return false, fmt.Errorf("add to wishlist: %w", err)
	}

	if added {
		s.logger.InfoContext(ctx, "product added to wishlist",
			slog.String("cart_key", key),
			slog.String("product_id", productID),
		)
	}
	return added, nil
}

// Remove drops a saved product. A product that is not saved is NotFound.
func (s *WishlistService) Remove(ctx context.Context, key, productID string) error {
	removed, err := s.repo.Remove(ctx, key, productID)
	if err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	if !removed {
		return apperrors.NotFound("wishlist item", productID)
	}

	s.logger.InfoContext(ctx, "product removed from wishlist",
		slog.String("cart_key", key),
		slog.String("product_id", productID),
	)
	return nil
}
