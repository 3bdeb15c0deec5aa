// Package service implements the cart business logic: hydrating carts from
// storage, applying inventory-aware mutations, and persisting the result.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/mireska/cartsvc/pkg/errors"

	"github.com/mireska/cartsvc/internal/catalog"
	"github.com/mireska/cartsvc/internal/domain"
	"github.com/mireska/cartsvc/internal/event"
	"github.com/mireska/cartsvc/internal/repository"
)

// MaxQuantityPerItem caps a single line's quantity regardless of stock, to
// prevent abuse.
const MaxQuantityPerItem = 100

// Catalog provides live product reads. *catalog.Client satisfies it.
type Catalog interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

// AddItemInput holds the parameters for adding an item to the cart.
// Quantity defaults to 1 when omitted.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// CartService implements cart operations. Mutations return the cart state
// after the operation together with an outcome describing what the
// operation actually did; inventory limits surface as outcomes, not errors.
type CartService struct {
	repo     repository.CartRepository
	catalog  Catalog
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a cart service.
func NewCartService(repo repository.CartRepository, cat Catalog, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		catalog:  cat,
		producer: producer,
		logger:   logger,
	}
}

// GetCart returns the user's cart, or an empty cart when none is stored.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.hydrate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// AddItem adds the requested quantity of a product (and optional variant) to
// the user's cart, snapshotting price and stock from the live catalog. The
// cart is persisted only when the outcome mutated it.
func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Cart, domain.Outcome, error) {
	if userID == "" {
		return nil, "", apperrors.InvalidInput("user id is required")
	}
	if input.ProductID == "" {
		return nil, "", apperrors.InvalidInput("product id is required")
	}
	if input.Quantity < 0 {
		return nil, "", apperrors.InvalidInput("quantity must not be negative")
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if input.Quantity > MaxQuantityPerItem {
		return nil, "", apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, "", fmt.Errorf("fetch product: %w", err)
	}

	snapshot, variant, err := catalog.Snapshot(product, input.VariantID)
	if err != nil {
		return nil, "", apperrors.InvalidInput(err.Error())
	}

	cart, err := s.hydrate(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	outcome := cart.AddLine(snapshot, variant, input.Quantity)
	if err := s.persist(ctx, cart, outcome); err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "add to cart",
		slog.String("user_id", userID),
		slog.String("product_id", input.ProductID),
		slog.String("variant_id", input.VariantID),
		slog.Int("quantity", input.Quantity),
		slog.String("outcome", string(outcome)),
	)

	return cart.Clone(), outcome, nil
}

// UpdateItemQuantity sets a line's quantity to exactly the requested value.
// Zero removes the line; a value above the line's snapshotted stock is
// rejected without clamping.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, productID, variantID string, quantity int) (*domain.Cart, domain.Outcome, error) {
	if userID == "" {
		return nil, "", apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, "", apperrors.InvalidInput("product id is required")
	}
	if quantity > MaxQuantityPerItem {
		return nil, "", apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.hydrate(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	outcome := cart.UpdateLineQuantity(productID, variantID, quantity)
	if err := s.persist(ctx, cart, outcome); err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "update cart quantity",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.String("variant_id", variantID),
		slog.Int("quantity", quantity),
		slog.String("outcome", string(outcome)),
	)

	return cart.Clone(), outcome, nil
}

// RemoveItem removes the matching line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID, variantID string) (*domain.Cart, domain.Outcome, error) {
	if userID == "" {
		return nil, "", apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, "", apperrors.InvalidInput("product id is required")
	}

	cart, err := s.hydrate(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	outcome := cart.RemoveLine(productID, variantID)
	if err := s.persist(ctx, cart, outcome); err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "remove from cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.String("variant_id", variantID),
		slog.String("outcome", string(outcome)),
	)

	return cart.Clone(), outcome, nil
}

// ClearCart removes the user's stored cart entirely. Clearing an absent
// cart is a no-op, not an error.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared", slog.String("user_id", userID))
	return nil
}

// ItemQuantity returns the quantity of the matching line, or 0 when the
// line (or the whole cart) is absent.
func (s *CartService) ItemQuantity(ctx context.Context, userID, productID, variantID string) (int, error) {
	if userID == "" {
		return 0, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return 0, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.hydrate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.LineQuantity(productID, variantID), nil
}

// hydrate loads the user's cart from storage. A missing cart yields a fresh
// empty one. A corrupted stored value is logged, its slot deleted, and a
// fresh cart returned; users lose the cart rather than the whole flow.
func (s *CartService) hydrate(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			return domain.NewCart(userID), nil
		case errors.Is(err, apperrors.ErrCorrupted):
			s.logger.WarnContext(ctx, "discarding corrupted cart",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			if delErr := s.repo.Delete(ctx, userID); delErr != nil {
				s.logger.ErrorContext(ctx, "failed to delete corrupted cart",
					slog.String("user_id", userID),
					slog.String("error", delErr.Error()),
				)
			}
			return domain.NewCart(userID), nil
		default:
			return nil, fmt.Errorf("get cart: %w", err)
		}
	}
	return cart, nil
}

// persist saves the cart when the outcome mutated it and publishes the
// cart.updated event. Publish failures are logged, never surfaced; the cart
// state in storage is the source of truth.
func (s *CartService) persist(ctx context.Context, cart *domain.Cart, outcome domain.Outcome) error {
	if !outcome.Mutated() {
		return nil
	}

	cart.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
