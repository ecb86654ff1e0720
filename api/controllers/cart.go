package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/api/middleware"
	"github.com/brewtab/ordering-backend/api/responses"
	"github.com/brewtab/ordering-backend/api/validators"
	cartsvc "github.com/brewtab/ordering-backend/internal/cart"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
	"github.com/brewtab/ordering-backend/pkg/logger"
)

// CartFetch returns the session's active cart with a fresh pricing pass.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		quote, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuoteResponse(quote))
	}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Notes     *string   `json:"notes"`
}

// CartAddItem adds a product line (or merges into an existing one).
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.AddItem(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			middleware.UserIDFromContext(r.Context()),
			payload.ProductID,
			payload.Quantity,
			payload.Notes,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuoteResponse(quote))
	}
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CartUpdateItem changes a line's quantity; zero removes it.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.UpdateItemQuantity(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			middleware.UserIDFromContext(r.Context()),
			productID,
			payload.Quantity,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuoteResponse(quote))
	}
}

// CartRemoveItem deletes a line from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.RemoveItem(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			middleware.UserIDFromContext(r.Context()),
			productID,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuoteResponse(quote))
	}
}

// CartClear empties the cart and resets discount selection.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func parseProductID(r *http.Request) (uuid.UUID, error) {
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}

type quoteResponse struct {
	ID                 uuid.UUID          `json:"id"`
	SessionID          string             `json:"session_id"`
	TableCode          *string            `json:"table_code,omitempty"`
	Currency           string             `json:"currency"`
	Items              []quoteItemPayload `json:"items"`
	GeneralDiscountID  *uuid.UUID         `json:"general_discount_id,omitempty"`
	GeneralAmount      decimal.Decimal    `json:"general_discount_amount"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	DiscountAmount     decimal.Decimal    `json:"discount_amount"`
	Total              decimal.Decimal    `json:"total"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type quoteItemPayload struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	LineTotal      decimal.Decimal `json:"line_total"`
	Notes          *string         `json:"notes,omitempty"`
	DiscountID     *uuid.UUID      `json:"discount_id,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

func newQuoteResponse(quote *cartsvc.Quote) quoteResponse {
	items := make([]quoteItemPayload, 0, len(quote.Cart.Items))
	for _, item := range quote.Cart.Items {
		line := quoteItemPayload{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			LineTotal:      item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Notes:          item.Notes,
			DiscountAmount: decimal.Zero,
		}
		if applied, ok := quote.Result.ItemDiscounts[item.ProductID]; ok {
			discountID := applied.DiscountID
			line.DiscountID = &discountID
			line.DiscountAmount = applied.Amount
		}
		items = append(items, line)
	}

	return quoteResponse{
		ID:                quote.Cart.ID,
		SessionID:         quote.Cart.SessionID,
		TableCode:         quote.Cart.TableCode,
		Currency:          string(quote.Cart.Currency),
		Items:             items,
		GeneralDiscountID: quote.Selection.GeneralDiscountID,
		GeneralAmount:     quote.Result.GeneralAmount,
		Subtotal:          quote.Result.Subtotal,
		DiscountAmount:    quote.Result.DiscountAmount,
		Total:             quote.Result.Total,
		UpdatedAt:         quote.Cart.UpdatedAt,
	}
}
