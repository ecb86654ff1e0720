package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ordersvc "github.com/brewtab/ordering-backend/internal/orders"
	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
	"github.com/brewtab/ordering-backend/pkg/pagination"
)

type stubOrdersService struct {
	result *ordersvc.SubmitResult
	order  *models.Order
	err    error
}

func (s stubOrdersService) Submit(ctx context.Context, sessionID string, userID *uuid.UUID, notes *string) (*ordersvc.SubmitResult, error) {
	return s.result, s.err
}

func (s stubOrdersService) Get(ctx context.Context, sessionID string, orderID uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func (s stubOrdersService) ListForSession(ctx context.Context, sessionID string, params pagination.Params) ([]models.Order, string, error) {
	if s.order == nil {
		return nil, "", s.err
	}
	return []models.Order{*s.order}, "", s.err
}

func (s stubOrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	return s.order, s.err
}

func testOrder() *models.Order {
	return &models.Order{
		ID:             uuid.New(),
		OrderNumber:    42,
		SessionID:      "sess-1",
		TableCode:      "T3",
		Status:         enums.OrderStatusPlaced,
		Currency:       enums.CurrencyUSD,
		Subtotal:       decimal.NewFromFloat(14.00),
		DiscountAmount: decimal.NewFromFloat(1.40),
		Total:          decimal.NewFromFloat(12.60),
		PlacedAt:       time.Now().UTC(),
	}
}

func TestOrderSubmitSuccess(t *testing.T) {
	order := testOrder()
	handler := OrderSubmit(stubOrdersService{
		result: &ordersvc.SubmitResult{Order: order, Warnings: []string{"usage recording failed"}},
	}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/orders", `{}`))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data submitOrderResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Order.ID != order.ID {
		t.Fatalf("unexpected order id %s", envelope.Data.Order.ID)
	}
	if len(envelope.Data.Warnings) != 1 {
		t.Fatalf("expected 1 warning got %d", len(envelope.Data.Warnings))
	}
}

func TestOrderSubmitEmptyCart(t *testing.T) {
	handler := OrderSubmit(stubOrdersService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/orders", `{}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderUpdateStatusRejectsUnknownStatus(t *testing.T) {
	handler := OrderUpdateStatus(stubOrdersService{order: testOrder()}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", uuid.NewString())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderDetailInvalidID(t *testing.T) {
	handler := OrderDetail(stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
