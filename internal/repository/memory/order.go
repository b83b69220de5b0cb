package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/greenleaf-garden/storefront/internal/domain"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// OrderRepository is an in-process order store.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	byKey  map[string][]string
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*domain.Order),
		byKey:  make(map[string][]string),
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	out := *o
	out.Items = make([]domain.LineItem, len(o.Items))
	copy(out.Items, o.Items)
	return &out
}

func (r *OrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return apperrors.AlreadyExists("order", "id", order.ID)
	}
	r.orders[order.ID] = cloneOrder(order)
	r.byKey[order.CartKey] = append(r.byKey[order.CartKey], order.ID)
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) Update(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		return apperrors.NotFound("order", order.ID)
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *OrderRepository) ListByCartKey(_ context.Context, key string, offset, limit int) ([]domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byKey[key]
	all := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		all = append(all, *cloneOrder(r.orders[id]))
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset < 0 || offset >= total {
		return []domain.Order{}, total, nil
	}
	end := total
	if limit < end-offset {
		end = offset + max(limit, 0)
	}
	return all[offset:end], total, nil
}
