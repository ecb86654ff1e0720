package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/api/responses"
	menusvc "github.com/brewtab/ordering-backend/internal/menu"
	"github.com/brewtab/ordering-backend/pkg/db/models"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
	"github.com/brewtab/ordering-backend/pkg/logger"
)

// MenuFetch returns the full browsable menu grouped by category.
func MenuFetch(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		menu, err := svc.Menu(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMenuResponse(menu))
	}
}

// MenuProduct returns a single product by id.
func MenuProduct(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.Product(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

type menuResponse struct {
	Sections      []menuSectionResponse `json:"sections"`
	Uncategorized []productResponse     `json:"uncategorized,omitempty"`
}

type menuSectionResponse struct {
	Category categoryResponse  `json:"category"`
	Products []productResponse `json:"products"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
}

type productResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageURL    *string         `json:"image_url,omitempty"`
	IsNew       bool            `json:"is_new"`
	IsPopular   bool            `json:"is_popular"`
	Available   bool            `json:"available"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func newMenuResponse(menu *menusvc.Menu) menuResponse {
	sections := make([]menuSectionResponse, 0, len(menu.Sections))
	for _, section := range menu.Sections {
		sections = append(sections, menuSectionResponse{
			Category: categoryResponse{
				ID:        section.Category.ID,
				Name:      section.Category.Name,
				SortOrder: section.Category.SortOrder,
			},
			Products: newProductResponses(section.Products),
		})
	}
	return menuResponse{
		Sections:      sections,
		Uncategorized: newProductResponses(menu.Uncategorized),
	}
}

func newProductResponses(products []models.Product) []productResponse {
	if len(products) == 0 {
		return nil
	}
	out := make([]productResponse, 0, len(products))
	for _, product := range products {
		out = append(out, newProductResponse(product))
	}
	return out
}

func newProductResponse(product models.Product) productResponse {
	return productResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		CategoryID:  product.CategoryID,
		UnitPrice:   product.UnitPrice,
		ImageURL:    product.ImageURL,
		IsNew:       product.IsNew,
		IsPopular:   product.IsPopular,
		Available:   product.Available,
		UpdatedAt:   product.UpdatedAt,
	}
}
