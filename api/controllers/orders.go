package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/api/middleware"
	"github.com/brewtab/ordering-backend/api/responses"
	"github.com/brewtab/ordering-backend/api/validators"
	ordersvc "github.com/brewtab/ordering-backend/internal/orders"
	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
	"github.com/brewtab/ordering-backend/pkg/logger"
	"github.com/brewtab/ordering-backend/pkg/pagination"
)

type submitOrderRequest struct {
	Notes *string `json:"notes"`
}

// OrderSubmit turns the session's active cart into an order.
func OrderSubmit(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload submitOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			middleware.UserIDFromContext(r.Context()),
			payload.Notes,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, submitOrderResponse{
			Order:    newOrderResponse(result.Order),
			Warnings: result.Warnings,
		})
	}
}

// OrderList returns the session's orders, newest first.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		orders, nextCursor, err := svc.ListForSession(r.Context(), middleware.SessionIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, newOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, orderListResponse{
			Orders:     out,
			NextCursor: nextCursor,
		})
	}
}

// OrderDetail returns one of the session's orders.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderUpdateStatus advances an order through its lifecycle. Staff only.
func OrderUpdateStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, enums.OrderStatus(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type submitOrderResponse struct {
	Order    orderResponse `json:"order"`
	Warnings []string      `json:"warnings,omitempty"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    int64               `json:"order_number"`
	TableCode      string              `json:"table_code"`
	Status         string              `json:"status"`
	Currency       string              `json:"currency"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	Total          decimal.Decimal     `json:"total"`
	Notes          *string             `json:"notes,omitempty"`
	Items          []orderItemResponse `json:"items"`
	PlacedAt       time.Time           `json:"placed_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type orderItemResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	LineTotal      decimal.Decimal `json:"line_total"`
	DiscountID     *uuid.UUID      `json:"discount_id,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Notes          *string         `json:"notes,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			LineTotal:      item.LineTotal,
			DiscountID:     item.DiscountID,
			DiscountAmount: item.DiscountAmount,
			Notes:          item.Notes,
		})
	}

	return orderResponse{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		TableCode:      order.TableCode,
		Status:         string(order.Status),
		Currency:       string(order.Currency),
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		Total:          order.Total,
		Notes:          order.Notes,
		Items:          items,
		PlacedAt:       order.PlacedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}
