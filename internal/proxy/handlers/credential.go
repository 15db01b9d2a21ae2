package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/overplay/spotify-broker/internal/db"
)

type credentialResponse struct {
	AccessSecret string    `json:"accessSecret"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Scope        string    `json:"scope"`
}

// CredentialHandler returns the owner's currently valid credential.
// 404 when the owner is not linked, 502 when refresh failed.
func CredentialHandler(source CredentialSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveCredential(w, r, source, false)
	}
}

// ForceRefreshHandler refreshes the owner's credential regardless of
// freshness and returns the new one.
func ForceRefreshHandler(source CredentialSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveCredential(w, r, source, true)
	}
}

func serveCredential(w http.ResponseWriter, r *http.Request, source CredentialSource, force bool) {
	ownerID := chi.URLParam(r, "ownerID")

	cred, err := source.Credential(r.Context(), ownerID, force)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{
				Kind:    "unauthorized",
				Message: "account not linked",
			}})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorBody{Error: errorDetail{
			Kind:    "unauthorized",
			Message: userMessage("unauthorized"),
		}})
		return
	}

	writeJSON(w, http.StatusOK, credentialResponse{
		AccessSecret: cred.AccessSecret,
		ExpiresAt:    cred.ExpiresAt,
		Scope:        cred.Scope,
	})
}
