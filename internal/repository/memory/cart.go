package memory

import (
	"context"
	"sync"

	"github.com/greenleaf-garden/storefront/internal/domain"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// CartRepository is an in-process cart store. Carts are copied on the way in
// and out so callers never share state with the store.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

// NewCartRepository creates an empty in-memory cart store.
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]*domain.Cart)}
}

func (r *CartRepository) Get(_ context.Context, key string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[key]
	if !ok {
		return nil, apperrors.NotFound("cart", key)
	}
	return cart.Clone(), nil
}

func (r *CartRepository) SaveIfVersion(_ context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := 0
	if existing, ok := r.carts[cart.Key]; ok {
		current = existing.Version
	}
	if current != expectedVersion {
		return false, nil
	}

	cart.Version = expectedVersion + 1
	r.carts[cart.Key] = cart.Clone()
	return true, nil
}
