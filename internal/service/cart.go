package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/greenleaf-garden/storefront/internal/domain"
	"github.com/greenleaf-garden/storefront/internal/event"
	"github.com/greenleaf-garden/storefront/internal/repository"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
	"github.com/greenleaf-garden/storefront/pkg/tracing"
)

// AddItemInput holds the parameters for adding a product to the cart.
// The price and name are taken from the catalog, never from the caller.
type AddItemInput struct {
	ProductID string
	Quantity  int
}

// CartService implements the cart ledger operations. Every mutation of a
// cart key runs under that key's lock, and stores are written with
// SaveIfVersion so writers in other processes cannot interleave either.
type CartService struct {
	repo      repository.CartRepository
	catalog   repository.ProductRepository
	publisher event.Publisher
	logger    *slog.Logger
	currency  string
	locks     *keyedMutex
	now       func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(
	repo repository.CartRepository,
	catalog repository.ProductRepository,
	publisher event.Publisher,
	logger *slog.Logger,
	currency string,
) *CartService {
	return &CartService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		currency:  currency,
		locks:     newKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetCart returns the view of the cart for key. A key without a stored cart
// gets an empty view; nothing is written.
func (s *CartService) GetCart(ctx context.Context, key string) (domain.CartView, error) {
	cart, err := s.load(ctx, key)
	if err != nil {
		return domain.CartView{}, err
	}
	return cart.View(), nil
}

// AddItem adds quantity units of a catalog product. An existing line for the
// product is merged and keeps the price it was first added at.
func (s *CartService) AddItem(ctx context.Context, key string, input AddItemInput) (view domain.CartView, err error) {
	ctx, span := tracing.Start(ctx, "CartService.AddItem",
		attribute.String("product.id", input.ProductID),
		attribute.Int("cart.quantity", input.Quantity),
	)
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()

	if input.ProductID == "" {
		return domain.CartView{}, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity <= 0 {
		return domain.CartView{}, apperrors.InvalidInput("quantity must be greater than 0")
	}

	product, err := s.catalog.GetByID(ctx, input.ProductID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("get product for cart: %w", err)
	}
	if !product.InStock {
		return domain.CartView{}, apperrors.InvalidInput(fmt.Sprintf("product %s is out of stock", product.Name))
	}

	var line *domain.LineItem
	cart, err := s.mutate(ctx, key, "add", func(cart *domain.Cart) error {
		var addErr error
		line, addErr = cart.Add(product.ID, product.Name, product.Price, input.Quantity)
		return addErr
	})
	if err != nil {
		return domain.CartView{}, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("cart_key", key),
		slog.String("product_id", product.ID),
		slog.String("line_id", line.ID),
		slog.Int("quantity", input.Quantity),
	)

	return cart.View(), nil
}

// UpdateQuantity sets the absolute quantity of a line. A quantity of zero or
// less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, key, lineID string, quantity int) (view domain.CartView, err error) {
	ctx, span := tracing.Start(ctx, "CartService.UpdateQuantity",
		attribute.String("cart.line_id", lineID),
		attribute.Int("cart.quantity", quantity),
	)
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()

	cart, err := s.mutate(ctx, key, "set_quantity", func(cart *domain.Cart) error {
		return cart.SetQuantity(lineID, quantity)
	})
	if err != nil {
		return domain.CartView{}, err
	}

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("cart_key", key),
		slog.String("line_id", lineID),
		slog.Int("quantity", quantity),
	)

	return cart.View(), nil
}

// RemoveItem deletes a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, key, lineID string) (view domain.CartView, err error) {
	ctx, span := tracing.Start(ctx, "CartService.RemoveItem",
		attribute.String("cart.line_id", lineID),
	)
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()

	cart, err := s.mutate(ctx, key, "remove", func(cart *domain.Cart) error {
		return cart.Remove(lineID)
	})
	if err != nil {
		return domain.CartView{}, err
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("cart_key", key),
		slog.String("line_id", lineID),
	)

	return cart.View(), nil
}

// Clear removes every line. Clearing an empty or unknown cart succeeds.
func (s *CartService) Clear(ctx context.Context, key string) (view domain.CartView, err error) {
	ctx, span := tracing.Start(ctx, "CartService.Clear")
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()

	unlock, err := s.locks.LockContext(ctx, key)
	if err != nil {
		return view, fmt.Errorf("wait for cart lock: %w", err)
	}
	defer unlock()

	cart, err := s.load(ctx, key)
	if err != nil {
		return domain.CartView{}, err
	}
	if cart.IsEmpty() {
		return cart.View(), nil
	}

	expected := cart.Version
	cart.Clear()
	err = s.save(ctx, cart, expected)
	cartMutationsTotal.WithLabelValues("clear", outcome(err)).Inc()
	if err != nil {
		return domain.CartView{}, err
	}

	s.publishCleared(ctx, cart)
	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("cart_key", key),
	)

	return cart.View(), nil
}

// Drain empties the cart for key and hands place a snapshot of the lines it
// held. If place fails the lines are written back and its error returned.
// An empty cart is a validation error and place is not called.
func (s *CartService) Drain(ctx context.Context, key string, place func(ctx context.Context, snapshot *domain.Cart) error) (err error) {
	ctx, span := tracing.Start(ctx, "CartService.Drain")
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()

	unlock, err := s.locks.LockContext(ctx, key)
	if err != nil {
		return fmt.Errorf("wait for cart lock: %w", err)
	}
	defer unlock()

	cart, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	if cart.IsEmpty() {
		return apperrors.InvalidInput("cart is empty")
	}

	snapshot := cart.Clone()
	expected := cart.Version
	cart.Clear()
	if err := s.save(ctx, cart, expected); err != nil {
		return err
	}

	if err := place(ctx, snapshot); err != nil {
		restored := snapshot.Clone()
		restored.UpdatedAt = s.now()
		if _, restoreErr := s.repo.SaveIfVersion(ctx, restored, cart.Version); restoreErr != nil {
			s.logger.ErrorContext(ctx, "failed to restore cart after checkout error",
				slog.String("cart_key", key),
				slog.String("error", restoreErr.Error()),
			)
		}
		return err
	}

	s.publishCleared(ctx, cart)
	return nil
}

// load returns the stored cart for key or a fresh empty one.
func (s *CartService) load(ctx context.Context, key string) (*domain.Cart, error) {
	if key == "" {
		return nil, apperrors.InvalidInput("cart key is required")
	}

	cart, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(key, s.currency, s.now()), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// mutate runs fn against the cart for key under the key's lock and saves
// the result. When fn fails nothing is written.
func (s *CartService) mutate(ctx context.Context, key, op string, fn func(*domain.Cart) error) (cart *domain.Cart, err error) {
	defer func() { cartMutationsTotal.WithLabelValues(op, outcome(err)).Inc() }()

	unlock, err := s.locks.LockContext(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("wait for cart lock: %w", err)
	}
	defer unlock()

	cart, err = s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	expected := cart.Version
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.save(ctx, cart, expected); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("cart_key", key),
			slog.String("error", err.Error()),
		)
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart, expected int) error {
	cart.UpdatedAt = s.now()

	ok, err := s.repo.SaveIfVersion(ctx, cart, expected)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return apperrors.Conflict("cart was modified concurrently, please retry")
	}
	return nil
}

func (s *CartService) publishCleared(ctx context.Context, cart *domain.Cart) {
	if err := s.publisher.PublishCartCleared(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("cart_key", cart.Key),
			slog.String("error", err.Error()),
		)
	}
}
