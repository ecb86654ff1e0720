package controllers

import (
	"net/http"

	"github.com/brewtab/ordering-backend/api/middleware"
	"github.com/brewtab/ordering-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func SessionPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "session", "status": "ok"}
		if sessionID := middleware.SessionIDFromContext(r.Context()); sessionID != "" {
			payload["session_id"] = sessionID
		}
		if userID := middleware.UserIDFromContext(r.Context()); userID != nil {
			payload["user_id"] = userID.String()
		}
		responses.WriteSuccess(w, payload)
	}
}
