package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const wishlistKeyPrefix = "wishlist:"

// WishlistRepository stores each wishlist as a sorted set scored by the time
// a product was added, so listings keep insertion order.
type WishlistRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewWishlistRepository creates a Redis-backed wishlist store. Lists expire
// ttl after their last change.
func NewWishlistRepository(client *redis.Client, ttl time.Duration) *WishlistRepository {
	return &WishlistRepository{client: client, ttl: ttl, now: time.Now}
}

func (r *WishlistRepository) Add(ctx context.Context, key, productID string) (bool, error) {
	k := wishlistKeyPrefix + key

	var added *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.ZAddNX(ctx, k, redis.Z{Score: float64(r.now().UnixMicro()), Member: productID})
		pipe.Expire(ctx, k, r.ttl)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis add wishlist item: %w", err)
	}
	return added.Val() == 1, nil
}

func (r *WishlistRepository) Remove(ctx context.Context, key, productID string) (bool, error) {
	n, err := r.client.ZRem(ctx, wishlistKeyPrefix+key, productID).Result()
	if err != nil {
		return false, fmt.Errorf("redis remove wishlist item: %w", err)
	}
	return n == 1, nil
}

func (r *WishlistRepository) List(ctx context.Context, key string) ([]string, error) {
	ids, err := r.client.ZRange(ctx, wishlistKeyPrefix+key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list wishlist: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
