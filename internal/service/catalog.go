package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/repository"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
	"github.com/greenleaf-garden/storefront/pkg/pagination"
)

// CatalogService serves the read-only product catalog.
type CatalogService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
	}
}

// ListProducts returns one page of the products matching filter and the
// total number of matches.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter, page pagination.Params) ([]domain.Product, int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)

	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return pagination.Slice(products, page), len(products), nil
}

// GetProduct looks a product up by id when ref is a UUID, otherwise by slug.
func (s *CatalogService) GetProduct(ctx context.Context, ref string) (*domain.Product, error) {
	ref = strings.TrimSpace(ref)

	var (
		product *domain.Product
		err     error
	)
	if _, parseErr := uuid.Parse(ref); parseErr == nil {
		product, err = s.repo.GetByID(ctx, ref)
	} else {
		product, err = s.repo.GetBySlug(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// GetByID looks a product up by id only.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// GetProductsByID resolves ids in order, skipping ids the catalog no longer
// carries.
func (s *CatalogService) GetProductsByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.DebugContext(ctx, "skipping unknown product",
				slog.String("product_id", id),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get product %s: %w", id, err)
		}
		products = append(products, *p)
	}
	return products, nil
}

// Categories lists the catalog categories with their product counts.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
