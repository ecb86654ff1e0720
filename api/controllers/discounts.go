package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/api/middleware"
	"github.com/brewtab/ordering-backend/api/responses"
	"github.com/brewtab/ordering-backend/api/validators"
	cartsvc "github.com/brewtab/ordering-backend/internal/cart"
	"github.com/brewtab/ordering-backend/pkg/db/models"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
	"github.com/brewtab/ordering-backend/pkg/logger"
)

// CartDiscountOptions lists the discounts this session may choose from.
func CartDiscountOptions(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		options, err := svc.DiscountOptions(r.Context(), middleware.SessionIDFromContext(r.Context()), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOptionsResponse(options))
	}
}

type selectDiscountRequest struct {
	DiscountID uuid.UUID `json:"discount_id" validate:"required"`
}

// CartSelectGeneral applies an explicit cart-level discount choice.
func CartSelectGeneral(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload selectDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.SelectGeneralDiscount(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			middleware.UserIDFromContext(r.Context()),
			payload.DiscountID,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuoteResponse(quote))
	}
}

// CartClearGeneral removes the cart-level discount. The choice sticks until
// the cart empties or the user selects another discount.
func CartClearGeneral(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		quote, err := svc.ClearGeneralDiscount(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			middleware.UserIDFromContext(r.Context()),
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuoteResponse(quote))
	}
}

// CartSelectItemDiscount applies an explicit per-item discount choice.
func CartSelectItemDiscount(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload selectDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.SelectItemDiscount(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			middleware.UserIDFromContext(r.Context()),
			productID,
			payload.DiscountID,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuoteResponse(quote))
	}
}

// CartClearItemDiscount removes an item's discount selection.
func CartClearItemDiscount(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		quote, err := svc.ClearItemDiscount(
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

type optionsResponse struct {
	General  []generalOptionPayload            `json:"general"`
	PerItem  map[string][]discountPayload      `json:"per_item"`
	Selected selectedDiscountsPayload          `json:"selected"`
}

type generalOptionPayload struct {
	Discount        discountPayload `json:"discount"`
	ProjectedAmount decimal.Decimal `json:"projected_amount"`
}

type discountPayload struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Kind  string          `json:"kind"`
	Value decimal.Decimal `json:"value"`
	Scope string          `json:"scope"`
}

type selectedDiscountsPayload struct {
	GeneralDiscountID *uuid.UUID           `json:"general_discount_id,omitempty"`
	ProductDiscounts  map[string]uuid.UUID `json:"product_discounts,omitempty"`
}

func newOptionsResponse(options *cartsvc.Options) optionsResponse {
	general := make([]generalOptionPayload, 0, len(options.General))
	for _, candidate := range options.General {
		general = append(general, generalOptionPayload{
			Discount:        newDiscountPayload(candidate.Discount),
			ProjectedAmount: candidate.ProjectedAmount,
		})
	}

	perItem := make(map[string][]discountPayload, len(options.PerItem))
	for productID, discounts := range options.PerItem {
		payloads := make([]discountPayload, 0, len(discounts))
		for _, d := range discounts {
			payloads = append(payloads, newDiscountPayload(d))
		}
		perItem[productID.String()] = payloads
	}

	selected := selectedDiscountsPayload{
		GeneralDiscountID: options.Selected.GeneralDiscountID,
	}
	if len(options.Selected.ProductDiscounts) > 0 {
		selected.ProductDiscounts = make(map[string]uuid.UUID, len(options.Selected.ProductDiscounts))
		for productID, discountID := range options.Selected.ProductDiscounts {
			selected.ProductDiscounts[productID.String()] = discountID
		}
	}

	return optionsResponse{
		General:  general,
		PerItem:  perItem,
		Selected: selected,
	}
}

func newDiscountPayload(d models.Discount) discountPayload {
	return discountPayload{
		ID:    d.ID,
		Name:  d.Name,
		Kind:  string(d.Kind),
		Value: d.Value,
		Scope: string(d.Scope),
	}
}
