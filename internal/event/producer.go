package event

import (
	"context"
	"fmt"

	"github.com/greenleaf-garden/storefront/internal/domain"
	pkgkafka "github.com/greenleaf-garden/storefront/pkg/kafka"
	"github.com/greenleaf-garden/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated      = pkgkafka.Topic("cart", "updated")
	TopicCartCleared      = pkgkafka.Topic("cart", "cleared")
	TopicOrderPlaced      = pkgkafka.Topic("order", "placed")
	TopicPaymentCompleted = pkgkafka.Topic("payment", "completed")
	TopicNewsletterSigned = pkgkafka.Topic("newsletter", "subscribed")
)

// Aggregate types.
const (
	AggregateCart       = "cart"
	AggregateOrder      = "order"
	AggregatePayment    = "payment"
	AggregateSubscriber = "subscriber"
)

const source = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	CartID    string         `json:"cart_id"`
	CartKey   string         `json:"cart_key"`
	Items     []LineItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Total     string         `json:"total"`
	Currency  string         `json:"currency"`
}

// LineItemData is the line payload within cart and order events.
type LineItemData struct {
	LineID    string `json:"line_id"`
	ProductID string `json:"product_id"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	CartID  string `json:"cart_id"`
	CartKey string `json:"cart_key"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID     string         `json:"order_id"`
	CartKey     string         `json:"cart_key"`
	Items       []LineItemData `json:"items"`
	Fulfillment string         `json:"fulfillment"`
	Subtotal    string         `json:"subtotal"`
	Total       string         `json:"total"`
	Currency    string         `json:"currency"`
}

// PaymentCompletedData is the payload for a payment.completed event.
type PaymentCompletedData struct {
	PaymentID         string `json:"payment_id"`
	OrderID           string `json:"order_id"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	Provider          string `json:"provider"`
	ProviderPaymentID string `json:"provider_payment_id"`
}

// SubscribedData is the payload for a newsletter.subscribed event.
type SubscribedData struct {
	Email string `json:"email"`
}

// eventWriter is the part of *pkgkafka.Producer the publisher uses.
type eventWriter interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka eventWriter
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer) *Producer {
	return &Producer{kafka: kafka}
}

func lineData(items []domain.LineItem) []LineItemData {
	out := make([]LineItemData, len(items))
	for i, item := range items {
		out[i] = LineItemData{
			LineID:    item.ID,
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.StringFixed(2),
		}
	}
	return out
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// PublishCartUpdated publishes a cart.updated event keyed by the cart key.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	view := cart.View()
	return p.publish(ctx, TopicCartUpdated, cart.Key, AggregateCart, CartUpdatedData{
		CartID:    cart.ID,
		CartKey:   cart.Key,
		Items:     lineData(view.Items),
		ItemCount: view.ItemCount,
		Total:     view.Total.StringFixed(2),
		Currency:  cart.Currency,
	})
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, cart *domain.Cart) error {
	return p.publish(ctx, TopicCartCleared, cart.Key, AggregateCart, CartClearedData{
		CartID:  cart.ID,
		CartKey: cart.Key,
	})
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderPlaced, order.ID, AggregateOrder, OrderPlacedData{
		OrderID:     order.ID,
		CartKey:     order.CartKey,
		Items:       lineData(order.Items),
		Fulfillment: string(order.Totals.Fulfillment),
		Subtotal:    order.Totals.Subtotal.StringFixed(2),
		Total:       order.Totals.Total.StringFixed(2),
		Currency:    order.Currency,
	})
}

// PublishPaymentCompleted publishes a payment.completed event keyed by order,
// so it follows the order.placed event on the same partition.
func (p *Producer) PublishPaymentCompleted(ctx context.Context, payment *domain.Payment) error {
	return p.publish(ctx, TopicPaymentCompleted, payment.OrderID, AggregatePayment, PaymentCompletedData{
		PaymentID:         payment.ID,
		OrderID:           payment.OrderID,
		Amount:            payment.Amount.StringFixed(2),
		Currency:          payment.Currency,
		Provider:          payment.Provider,
		ProviderPaymentID: payment.ProviderPaymentID,
	})
}

// PublishSubscribed publishes a newsletter.subscribed event.
func (p *Producer) PublishSubscribed(ctx context.Context, sub *domain.Subscriber) error {
	return p.publish(ctx, TopicNewsletterSigned, sub.Email, AggregateSubscriber, SubscribedData{Email: sub.Email})
}
