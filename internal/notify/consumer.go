package notify

import (
	"context"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/logger"
	btpubsub "github.com/brewtab/ordering-backend/pkg/pubsub"
)

const (
	consumerScope = "order-notify"
	dedupeTTL     = 24 * time.Hour
)

type tokenSource interface {
	FindBySession(ctx context.Context, sessionID string) (*models.DeviceToken, error)
}

// Pusher delivers one push message to a device token.
type Pusher interface {
	Push(ctx context.Context, token, platform, title, body string) error
}

type dedupeStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Consumer turns order events into push notifications for the device that
// placed the order.
type Consumer struct {
	tokens       tokenSource
	pusher       Pusher
	dedupe       dedupeStore
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer builds the order notification consumer.
func NewConsumer(tokens tokenSource, pusher Pusher, dedupe dedupeStore, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token source required")
	}
	if pusher == nil {
		return nil, fmt.Errorf("pusher required")
	}
	if dedupe == nil {
		return nil, fmt.Errorf("dedupe store required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		tokens:       tokens,
		pusher:       pusher,
		dedupe:       dedupe,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg.ID, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process handles one message; the returned bool is whether to ack.
// Malformed messages are acked, redelivery cannot fix them.
func (c *Consumer) process(ctx context.Context, messageID string, data []byte) bool {
	logCtx := c.logg.WithField(ctx, "message_id", messageID)

	event, err := btpubsub.ParseOrderEvent(data)
	if err != nil {
		c.logg.Error(logCtx, "dropping undecodable order event", err)
		return true
	}
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"order_id": event.OrderID.String(),
		"type":     event.Type,
	})

	dedupeKey := c.dedupe.IdempotencyKey(consumerScope, messageID)
	fresh, err := c.dedupe.SetNX(ctx, dedupeKey, event.OrderID.String(), dedupeTTL)
	if err != nil {
		c.logg.Error(logCtx, "dedupe check failed", err)
		return false
	}
	if !fresh {
		return true
	}

	token, err := c.tokens.FindBySession(ctx, event.SessionID)
	if err != nil {
		c.logg.Error(logCtx, "token lookup failed", err)
		_ = c.dedupe.Del(ctx, dedupeKey)
		return false
	}
	if token == nil {
		// Nothing registered for this session; not an error.
		return true
	}

	title, body := render(event)
	if err := c.pusher.Push(ctx, token.Token, token.Platform, title, body); err != nil {
		c.logg.Error(logCtx, "push delivery failed", err)
		// Release the marker so the redelivery is not swallowed.
		_ = c.dedupe.Del(ctx, dedupeKey)
		return false
	}
	c.logg.Info(logCtx, "order notification delivered")
	return true
}

func render(event btpubsub.OrderEvent) (string, string) {
	switch event.Type {
	case btpubsub.EventOrderPlaced:
		return fmt.Sprintf("Order #%d received", event.OrderNumber),
			fmt.Sprintf("We're on it. Total %s, table %s.", event.Total, event.TableCode)
	case btpubsub.EventOrderStatusChanged:
		switch event.Status {
		case "preparing":
			return fmt.Sprintf("Order #%d in the kitchen", event.OrderNumber), "Your order is being prepared."
		case "ready":
			return fmt.Sprintf("Order #%d is ready", event.OrderNumber), "It's on its way to your table."
		case "delivered":
			return fmt.Sprintf("Order #%d delivered", event.OrderNumber), "Enjoy!"
		case "canceled":
			return fmt.Sprintf("Order #%d canceled", event.OrderNumber), "Please see staff for details."
		}
	}
	return fmt.Sprintf("Order #%d updated", event.OrderNumber),
		fmt.Sprintf("Status: %s.", event.Status)
}
