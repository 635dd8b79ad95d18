package messaging

import (
	"context"
	"fmt"
	"time"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "dangerous_goods.events"

	EventNameOrderPlaced  = "dangerous_goods.order_placed"
	OrderPlacedRoutingKey = "dangerous_goods.order_placed.v1"

	producerName   = "dangerous-goods-backend"
	publishTimeout = 3 * time.Second
)

// Envelope wraps every published event.
type Envelope struct {
	EventName    string          `json:"eventName"`
	EventVersion int             `json:"eventVersion"`
	EventID      string          `json:"eventId"`
	Producer     string          `json:"producer"`
	PartitionKey string          `json:"partitionKey"`
	OccurredAt   time.Time       `json:"occurredAt"`
	Payload      json.RawMessage `json:"payload"`
}

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitPublisher struct {
	conn *amqp.Connection
	ch   Channel
}

// DialRabbitPublisher connects to the broker and declares the events exchange.
func DialRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := NewRabbitPublisher(ch)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func NewRabbitPublisher(ch Channel) (*RabbitPublisher, error) {
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &RabbitPublisher{ch: ch}, nil
}

func (p *RabbitPublisher) PublishDangerousGoodsOrder(ctx context.Context, evt domain.DangerousGoodsOrderPlaced) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal order placed payload: %w", err)
	}
	body, err := json.Marshal(Envelope{
		EventName:    EventNameOrderPlaced,
		EventVersion: 1,
		EventID:      uuid.NewString(),
		Producer:     producerName,
		PartitionKey: evt.OrderID,
		OccurredAt:   time.Now().UTC(),
		Payload:      payload,
	})
	if err != nil {
		return fmt.Errorf("marshal order placed envelope: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.ch.PublishWithContext(pubCtx, EventsExchange, OrderPlacedRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", OrderPlacedRoutingKey, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishDangerousGoodsOrder(ctx context.Context, evt domain.DangerousGoodsOrderPlaced) error {
	logger.WithContext(ctx).Debug().Str("order_id", evt.OrderID).Msg("event publishing disabled, dropping order placed event")
	return nil
}
