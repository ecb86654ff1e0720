package controllers

import (
	"net/http"

	"github.com/brewtab/ordering-backend/api/middleware"
	"github.com/brewtab/ordering-backend/api/responses"
	"github.com/brewtab/ordering-backend/api/validators"
	devicesvc "github.com/brewtab/ordering-backend/internal/devices"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
	"github.com/brewtab/ordering-backend/pkg/logger"
)

type registerDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required"`
}

// DeviceRegister stores the session's push token for order updates.
func DeviceRegister(svc devicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "devices service unavailable"))
			return
		}

		var payload registerDeviceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := svc.Register(
			r.Context(),
			middleware.SessionIDFromContext(r.Context()),
			middleware.UserIDFromContext(r.Context()),
			payload.Token,
			payload.Platform,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"status":   "registered",
			"platform": token.Platform,
		})
	}
}

// DeviceUnregister removes the session's push token.
func DeviceUnregister(svc devicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "devices service unavailable"))
			return
		}

		if err := svc.Unregister(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "unregistered"})
	}
}
