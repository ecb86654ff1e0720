package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

// Event types carried on the orders topic.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message published for order lifecycle changes and
// consumed by the notify worker.
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	SessionID   string    `json:"session_id"`
	TableCode   string    `json:"table_code"`
	Status      string    `json:"status"`
	Total       string    `json:"total"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PublishOrderEvent sends the event and waits for the server ack.
func PublishOrderEvent(ctx context.Context, publisher *pubsub.Publisher, event OrderEvent) error {
	if publisher == nil {
		return fmt.Errorf("orders publisher not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	result := publisher.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"type": event.Type},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

// ParseOrderEvent decodes a consumed message payload.
func ParseOrderEvent(data []byte) (OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}
	return event, nil
}
