package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/internal/cart"
	"github.com/brewtab/ordering-backend/internal/pricing"
	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
	"github.com/brewtab/ordering-backend/pkg/logger"
	"github.com/brewtab/ordering-backend/pkg/metrics"
	"github.com/brewtab/ordering-backend/pkg/pagination"
	"github.com/brewtab/ordering-backend/pkg/pubsub"
)

// OrderStore is the persistence surface the service needs.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListBySession(ctx context.Context, sessionID string, params pagination.Params) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

type cartSource interface {
	Get(ctx context.Context, sessionID string, userID *uuid.UUID) (*cart.Quote, error)
	Clear(ctx context.Context, sessionID string) error
}

type tableSession interface {
	Current(ctx context.Context, sessionID string) (string, error)
}

type usageRecorder interface {
	RecordIntents(ctx context.Context, orderID uuid.UUID, intents []pricing.UsageIntent) error
}

type eventPublisher interface {
	PublishOrderEvent(ctx context.Context, event pubsub.OrderEvent) error
}

// SubmitResult is a placed order plus any non-fatal follow-up failures.
// Usage recording and event publishing are advisory; their errors surface
// here as warnings instead of failing the submission.
type SubmitResult struct {
	Order    *models.Order
	Warnings []string
}

// Service handles order submission and status tracking.
type Service interface {
	Submit(ctx context.Context, sessionID string, userID *uuid.UUID, notes *string) (*SubmitResult, error)
	Get(ctx context.Context, sessionID string, orderID uuid.UUID) (*models.Order, error)
	ListForSession(ctx context.Context, sessionID string, params pagination.Params) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error)
}

type service struct {
	store     OrderStore
	carts     cartSource
	tables    tableSession
	usage     usageRecorder
	publisher eventPublisher
	logg      *logger.Logger
	metrics   *metrics.OrderMetrics
	nowFn     func() time.Time
}

// NewService builds the orders service. The publisher may be nil when
// order events are disabled (tests, local development without GCP), and
// the metrics collector may be nil.
func NewService(store OrderStore, carts cartSource, tables tableSession, usage usageRecorder, publisher eventPublisher, logg *logger.Logger, orderMetrics *metrics.OrderMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("order store required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart source required")
	}
	if tables == nil {
		return nil, fmt.Errorf("table session source required")
	}
	if usage == nil {
		return nil, fmt.Errorf("usage recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:     store,
		carts:     carts,
		tables:    tables,
		usage:     usage,
		publisher: publisher,
		logg:      logg,
		metrics:   orderMetrics,
		nowFn:     time.Now,
	}, nil
}

// Submit reprices the session's cart server-side, persists the order with
// the computed totals, records discount usage, resets the cart, and
// announces the order. The price embedded in the order is the engine's
// output at submission time; nothing from the client is trusted.
func (s *service) Submit(ctx context.Context, sessionID string, userID *uuid.UUID, notes *string) (*SubmitResult, error) {
	tableCode, err := s.tables.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if tableCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scan a table before ordering")
	}

	quote, err := s.carts.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if len(quote.Cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order := buildOrder(quote, sessionID, tableCode, notes)
	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	result := &SubmitResult{Order: order}

	identity := pricing.Identity{UserID: quote.Cart.UserID}
	intents := pricing.UsageIntents(quote.Selection, quote.Result, identity)
	if err := s.usage.RecordIntents(ctx, order.ID, intents); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID.String()), "discount usage recording failed")
		result.Warnings = append(result.Warnings, "discount usage could not be recorded")
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID.String()), "cart reset after submission failed")
		result.Warnings = append(result.Warnings, "cart could not be reset")
	}

	s.metrics.IncPlaced()
	s.announce(ctx, order, pubsub.EventOrderPlaced, result)
	return result, nil
}

// Get loads an order, scoped to the requesting session.
func (s *service) Get(ctx context.Context, sessionID string, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.SessionID != sessionID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListForSession(ctx context.Context, sessionID string, params pagination.Params) ([]models.Order, string, error) {
	return s.store.ListBySession(ctx, sessionID, params)
}

// UpdateStatus advances the fulfillment state and announces the change.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}

	if err := s.store.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	s.metrics.IncStatusChanged(string(status))
	s.announce(ctx, order, pubsub.EventOrderStatusChanged, nil)
	return order, nil
}

// announce publishes an order event; failures are logged, never returned.
func (s *service) announce(ctx context.Context, order *models.Order, eventType string, result *SubmitResult) {
	if s.publisher == nil {
		return
	}
	event := pubsub.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		SessionID:   order.SessionID,
		TableCode:   order.TableCode,
		Status:      order.Status.String(),
		Total:       order.Total.StringFixed(2),
		OccurredAt:  s.nowFn().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID.String()), "order event publish failed")
		if result != nil {
			result.Warnings = append(result.Warnings, "order notification could not be sent")
		}
	}
}

func buildOrder(quote *cart.Quote, sessionID, tableCode string, notes *string) *models.Order {
	order := &models.Order{
		SessionID:      sessionID,
		UserID:         quote.Cart.UserID,
		TableCode:      tableCode,
		Status:         enums.OrderStatusPlaced,
		Currency:       quote.Cart.Currency,
		Subtotal:       quote.Result.Subtotal,
		DiscountAmount: quote.Result.DiscountAmount,
		Total:          quote.Result.Total,
		Notes:          notes,
	}
	for _, item := range quote.Cart.Items {
		line := models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Notes:     item.Notes,
		}
		if applied, ok := quote.Result.ItemDiscounts[item.ProductID]; ok {
			discountID := applied.DiscountID
			line.DiscountID = &discountID
			line.DiscountAmount = applied.Amount
		}
		order.Items = append(order.Items, line)
	}
	return order
}
