// Package repository defines the persistence port for carts.
package repository

import (
	"context"

	"github.com/mireska/cartsvc/internal/domain"
)

// CartRepository stores one cart snapshot per user. Implementations return
// apperrors.ErrNotFound (via errors.Is) when no cart exists for the user and
// apperrors.ErrCorrupted when the stored value cannot be decoded; callers
// are expected to treat both as "no cart" and start fresh.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}
