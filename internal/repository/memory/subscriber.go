package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/greenleaf-garden/storefront/internal/domain"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
)

// SubscriberRepository is an in-process newsletter list.
type SubscriberRepository struct {
	mu   sync.RWMutex
	subs map[string]domain.Subscriber
}

func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{subs: make(map[string]domain.Subscriber)}
}

func (r *SubscriberRepository) Create(_ context.Context, sub *domain.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(sub.Email)
	if _, ok := r.subs[email]; ok {
		return apperrors.AlreadyExists("subscriber", "email", sub.Email)
	}
	r.subs[email] = *sub
	return nil
}

func (r *SubscriberRepository) GetByEmail(_ context.Context, email string) (*domain.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.NotFound("subscriber", email)
	}
	return &sub, nil
}
