package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/overplay/spotify-broker/internal/db"
)

// RevokeAccountHandler marks a linked account permanently inactive.
// Revoking an already revoked account is a no-op.
func RevokeAccountHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := chi.URLParam(r, "id")
		if err := store.Revoke(r.Context(), accountID); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
				Kind:    "request_failed",
				Message: "could not revoke account",
			}})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
