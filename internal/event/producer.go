// Package event publishes cart domain events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mireska/cartsvc/internal/domain"
	pkgkafka "github.com/mireska/cartsvc/pkg/kafka"
	"github.com/mireska/cartsvc/pkg/logger"
)

// Kafka topics for cart domain events.
const (
	TopicCartUpdated    = "shop.cart.updated"
	TopicCartCleared    = "shop.cart.cleared"
	TopicCartCheckedOut = "shop.cart.checked_out"
)

const aggregateTypeCart = "cart"

const sourceCartService = "cart-service"

// LineData is the per-line payload within cart events.
type LineData struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	UserID      string     `json:"user_id"`
	Items       []LineData `json:"items"`
	TotalItems  int        `json:"total_items"`
	TotalAmount int64      `json:"total_amount"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	UserID string `json:"user_id"`
}

// CartCheckedOutData is the payload for a cart.checked_out event.
type CartCheckedOutData struct {
	UserID      string     `json:"user_id"`
	OrderID     string     `json:"order_id"`
	Items       []LineData `json:"items"`
	TotalItems  int        `json:"total_items"`
	TotalAmount int64      `json:"total_amount"`
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the cart service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func lineData(cart *domain.Cart) []LineData {
	items := make([]LineData, len(cart.Items))
	for i := range cart.Items {
		line := &cart.Items[i]
		items[i] = LineData{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Price:     line.Product.Price,
			Quantity:  line.Quantity,
		}
		if line.Variant != nil {
			items[i].VariantID = line.Variant.ID
		}
	}
	return items
}

func (p *Producer) publish(ctx context.Context, topic, userID string, data any) error {
	ev, err := pkgkafka.NewEvent(topic, userID, aggregateTypeCart, sourceCartService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if cid := logger.CorrelationID(ctx); cid != "" {
		ev.WithCorrelationID(cid)
	}
	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// PublishCartUpdated publishes a cart.updated event reflecting the cart's
// current state after a mutation.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		UserID:      cart.UserID,
		Items:       lineData(cart),
		TotalItems:  cart.TotalItems,
		TotalAmount: cart.TotalAmount,
	}
	if err := p.publish(ctx, TopicCartUpdated, cart.UserID, data); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("user_id", cart.UserID),
		slog.Int("total_items", cart.TotalItems),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, userID string) error {
	if err := p.publish(ctx, TopicCartCleared, userID, CartClearedData{UserID: userID}); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("user_id", userID),
	)
	return nil
}

// PublishCartCheckedOut publishes a cart.checked_out event with the cart
// contents that were submitted as an order.
func (p *Producer) PublishCartCheckedOut(ctx context.Context, cart *domain.Cart, orderID string) error {
	data := CartCheckedOutData{
		UserID:      cart.UserID,
		OrderID:     orderID,
		Items:       lineData(cart),
		TotalItems:  cart.TotalItems,
		TotalAmount: cart.TotalAmount,
	}
	if err := p.publish(ctx, TopicCartCheckedOut, cart.UserID, data); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published cart.checked_out event",
		slog.String("user_id", cart.UserID),
		slog.String("order_id", orderID),
	)
	return nil
}
