package repository

import (
	"context"

	"github.com/greenleaf-garden/storefront/internal/domain"
)

// CartRepository defines the interface for cart storage keyed by cart key.
type CartRepository interface {
	// Get retrieves the cart for key. Returns a NotFound error when there is none.
	Get(ctx context.Context, key string) (*domain.Cart, error)

	// SaveIfVersion stores cart only if the stored version still equals
	// expectedVersion (0 for a cart that does not exist yet). On success the
	// cart's Version is advanced. Returns false when another writer won.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)
}

// ProductRepository is the read-only catalog.
type ProductRepository interface {
	// List returns every product matching filter in catalog order.
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// OrderRepository stores placed orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error

	// ListByCartKey returns one page of the key's orders, newest first, and
	// the total number of orders for the key.
	ListByCartKey(ctx context.Context, key string, offset, limit int) ([]domain.Order, int, error)
}

// PaymentRepository stores charge attempts.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
}

// SubscriberRepository stores newsletter subscribers by normalised email.
type SubscriberRepository interface {
	// Create returns an AlreadyExists error for a known email.
	Create(ctx context.Context, sub *domain.Subscriber) error
	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
}

// WishlistRepository stores a set of product ids per cart key.
type WishlistRepository interface {
	// Add reports whether productID was newly added.
	Add(ctx context.Context, key, productID string) (bool, error)
	// Remove reports whether productID was present.
	Remove(ctx context.Context, key, productID string) (bool, error)
	// List returns product ids in the order they were added.
	List(ctx context.Context, key string) ([]string, error)
}
