package memory

import (
	"context"
	"sync"

	"github.com/greenleaf-garden/storefront/internal/domain"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// PaymentRepository is an in-process payment store.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]domain.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[string]domain.Payment)}
}

func (r *PaymentRepository) Create(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[p.ID]; ok {
		return apperrors.AlreadyExists("payment", "id", p.ID)
	}
	r.payments[p.ID] = *p
	return nil
}

func (r *PaymentRepository) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, apperrors.NotFound("payment", id)
	}
	return &p, nil
}

func (r *PaymentRepository) Update(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[p.ID]; !ok {
		return apperrors.NotFound("payment", p.ID)
	}
	r.payments[p.ID] = *p
	return nil
}
