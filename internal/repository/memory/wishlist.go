package memory

import (
	"context"
	"slices"
	"sync"
)

// WishlistRepository keeps each key's product ids in insertion order.
type WishlistRepository struct {
	mu    sync.RWMutex
	lists map[string][]string
}

func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{lists: make(map[string][]string)}
}

func (r *WishlistRepository) Add(_ context.Context, key, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.lists[key], productID) {
		return false, nil
	}
	r.lists[key] = append(r.lists[key], productID)
	return true, nil
}

func (r *WishlistRepository) Remove(_ context.Context, key, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.Index(r.lists[key], productID)
	if i < 0 {
		return false, nil
	}
	r.lists[key] = slices.Delete(r.lists[key], i, i+1)
	return true, nil
}

func (r *WishlistRepository) List(_ context.Context, key string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.lists[key]))
	copy(out, r.lists[key])
	return out, nil
}
