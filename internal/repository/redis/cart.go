// Package redis implements cart persistence on Redis. Each user's cart is
// one JSON value under "cart:<userID>", wrapped in a versioned envelope so
// the stored shape can evolve without breaking old readers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mireska/cartsvc/internal/domain"
	apperrors "github.com/mireska/cartsvc/pkg/errors"
)

const keyPrefix = "cart:"

// schemaVersion is the envelope version this code writes. Readers accept
// only versions they know; anything else is treated as corrupted.
const schemaVersion = 1

// envelope wraps the persisted cart with its schema version.
type envelope struct {
	SchemaVersion int          `json:"schema_version"`
	Cart          *domain.Cart `json:"cart"`
}

// CartRepository implements repository.CartRepository using Redis.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a Redis-backed cart repository. Saved carts
// expire after ttl of inactivity; every Save resets the clock.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get loads the cart stored for userID. A missing key yields ErrNotFound; a
// value that fails to decode or carries an unknown schema version yields
// ErrCorrupted so the caller can discard it.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	key := keyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperrors.Corrupted(key, err)
	}
	if env.SchemaVersion != schemaVersion || env.Cart == nil {
		return nil, apperrors.Corrupted(key, fmt.Errorf("unsupported schema version %d", env.SchemaVersion))
	}

	return env.Cart, nil
}

// Save persists the cart under its user's key with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	key := keyPrefix + cart.UserID

	data, err := json.Marshal(envelope{SchemaVersion: schemaVersion, Cart: cart})
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the cart stored for userID. Deleting an absent cart is not
// an error.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
