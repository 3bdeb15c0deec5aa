// Package checkout submits a cart to the order service. Cart lines hold
// add-time snapshots that can go stale, so every line is re-validated
// against the live catalog before the order is placed.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/mireska/cartsvc/pkg/errors"
	"github.com/mireska/cartsvc/pkg/httpclient"

	"github.com/mireska/cartsvc/internal/domain"
	"github.com/mireska/cartsvc/internal/event"
	"github.com/mireska/cartsvc/internal/repository"
	"github.com/mireska/cartsvc/internal/service"
)

// Confirmation is the result of a successful checkout.
type Confirmation struct {
	OrderID     string `json:"order_id"`
	TotalItems  int    `json:"total_items"`
	TotalAmount int64  `json:"total_amount"`
}

// Service validates and submits carts as orders.
type Service struct {
	repo     repository.CartRepository
	catalog  service.Catalog
	http     httpclient.Doer
	orderURL string
	producer *event.Producer
	logger   *slog.Logger
}

// NewService creates a checkout service. orderURL is the order service
// root, e.g. "http://orders:8080".
func NewService(
	repo repository.CartRepository,
	cat service.Catalog,
	doer httpclient.Doer,
	orderURL string,
	producer *event.Producer,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		catalog:  cat,
		http:     doer,
		orderURL: orderURL,
		producer: producer,
		logger:   logger,
	}
}

// Submit places an order for the user's current cart. The stored cart is
// loaded, every line re-checked against live inventory, and the order
// submitted; on success the cart is cleared. Lines that no longer clear
// live inventory fail the whole checkout with a 422 naming each offender,
// leaving the cart untouched for the user to fix.
func (s *Service) Submit(ctx context.Context, userID string) (*Confirmation, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrCorrupted) {
			return nil, apperrors.InvalidInput("cart is empty")
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	if err := s.validateLines(ctx, cart); err != nil {
		return nil, err
	}

	orderID, err := s.createOrder(ctx, cart)
	if err != nil {
		return nil, err
	}

	// The order is placed; failing to clear the cart must not fail the
	// checkout. The stale cart surfaces to the user, who can clear it.
	if err := s.repo.Delete(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("user_id", userID),
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishCartCheckedOut(ctx, cart, orderID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.checked_out event",
			slog.String("user_id", userID),
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout submitted",
		slog.String("user_id", userID),
		slog.String("order_id", orderID),
		slog.Int("total_items", cart.TotalItems),
		slog.Int64("total_amount", cart.TotalAmount),
	)

	return &Confirmation{
		OrderID:     orderID,
		TotalItems:  cart.TotalItems,
		TotalAmount: cart.TotalAmount,
	}, nil
}

// validateLines re-checks every cart line against the live catalog and
// collects all offenders rather than stopping at the first.
func (s *Service) validateLines(ctx context.Context, cart *domain.Cart) error {
	var offending []string

	for i := range cart.Items {
		line := &cart.Items[i]

		product, err := s.catalog.GetProduct(ctx, line.Product.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				offending = append(offending, fmt.Sprintf("%s: no longer available", line.Product.Name))
				continue
			}
			return fmt.Errorf("validate line %s: %w", line.Product.ID, err)
		}

		if product.Status == domain.ProductStatusSoldOut {
			offending = append(offending, fmt.Sprintf("%s: sold out", line.Product.Name))
			continue
		}

		available := product.Quantity
		if line.Variant != nil {
			v := product.Variant(line.Variant.ID)
			if v == nil {
				offending = append(offending, fmt.Sprintf("%s: variant no longer available", line.Product.Name))
				continue
			}
			available = v.Quantity
		}
		if line.Quantity > available {
			offending = append(offending, fmt.Sprintf("%s: only %d in stock", line.Product.Name, available))
		}
	}

	if len(offending) > 0 {
		return apperrors.Unprocessable("cart has items that cannot be fulfilled: " + strings.Join(offending, "; "))
	}
	return nil
}

type createOrderRequest struct {
	UserID      string                `json:"user_id"`
	Items       []domain.CheckoutItem `json:"items"`
	TotalAmount int64                 `json:"total_amount"`
}

type createOrderResponse struct {
	Data struct {
		OrderID string `json:"order_id"`
	} `json:"data"`
}

// createOrder posts the cart contents to the order service.
func (s *Service) createOrder(ctx context.Context, cart *domain.Cart) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		UserID:      cart.UserID,
		Items:       cart.CheckoutItems(),
		TotalAmount: cart.TotalAmount,
	})
	if err != nil {
		return "", fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.orderURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(ctx, req)
	if err != nil {
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			return "", apperrors.Unavailable("order service is temporarily unavailable, please retry")
		}
		return "", fmt.Errorf("call order service: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", httpclient.ResponseError(resp, "order")
	}
	defer resp.Body.Close()

	var orderResp createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if orderResp.Data.OrderID == "" {
		return "", fmt.Errorf("order service returned no order id")
	}

	return orderResp.Data.OrderID, nil
}
