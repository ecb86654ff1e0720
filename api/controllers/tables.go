package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/brewtab/ordering-backend/api/middleware"
	"github.com/brewtab/ordering-backend/api/responses"
	"github.com/brewtab/ordering-backend/api/validators"
	cartsvc "github.com/brewtab/ordering-backend/internal/cart"
	tablesvc "github.com/brewtab/ordering-backend/internal/tables"
	"github.com/brewtab/ordering-backend/pkg/db/models"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
	"github.com/brewtab/ordering-backend/pkg/logger"
)

type claimTableRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type tableResponse struct {
	ID    uuid.UUID `json:"id"`
	Code  string    `json:"code"`
	Label string    `json:"label"`
	Seats int       `json:"seats"`
}

func newTableResponse(table *models.VenueTable) tableResponse {
	return tableResponse{
		ID:    table.ID,
		Code:  table.Code,
		Label: table.Label,
		Seats: table.Seats,
	}
}

// TableClaim binds the session to a scanned table code. The active cart, if
// any, picks up the code so order submission knows where to deliver.
func TableClaim(svc tablesvc.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tables service unavailable"))
			return
		}

		var payload claimTableRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		table, err := svc.Claim(r.Context(), sessionID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if carts != nil {
			if err := carts.AttachTable(r.Context(), sessionID, table.Code); err != nil {
				logg.Error(r.Context(), "attach table to cart", err)
			}
		}

		responses.WriteSuccess(w, newTableResponse(table))
	}
}

// TableCurrent returns the table code the session currently holds.
func TableCurrent(svc tablesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tables service unavailable"))
			return
		}

		code, err := svc.Current(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"code": code})
	}
}

// TableRelease drops the session's table claim.
func TableRelease(svc tablesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tables service unavailable"))
			return
		}

		if err := svc.Release(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "released"})
	}
}

// TableList returns the venue's active tables.
func TableList(svc tablesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tables service unavailable"))
			return
		}

		tables, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]tableResponse, 0, len(tables))
		for i := range tables {
			out = append(out, newTableResponse(&tables[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
