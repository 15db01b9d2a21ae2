// Package handlers exposes the broker and gateway over HTTP. Each handler
// is a constructor taking its collaborators and returning an
// http.HandlerFunc.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/overplay/spotify-broker/internal/auth/token"
	"github.com/overplay/spotify-broker/internal/errs"
)

// CredentialSource is the broker surface handlers need.
type CredentialSource interface {
	Credential(ctx context.Context, ownerID string, force bool) (*token.Credential, error)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeClassifiedError maps the error taxonomy onto HTTP statuses for the
// playback surface.
func writeClassifiedError(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)

	var status int
	switch kind {
	case errs.KindUnauthorized:
		status = http.StatusUnauthorized
	case errs.KindPremiumRequired, errs.KindForbidden:
		status = http.StatusForbidden
	case errs.KindNoActiveDevice:
		status = http.StatusNotFound
	default:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, errorBody{Error: errorDetail{
		Kind:    string(kind),
		Message: userMessage(kind),
	}})
}

// userMessage renders the fixed user-facing reaction for each kind.
func userMessage(kind errs.Kind) string {
	switch kind {
	case errs.KindUnauthorized:
		return "account link is no longer valid; please re-link your account"
	case errs.KindPremiumRequired:
		return "this action requires a premium subscription on the streaming service"
	case errs.KindNoActiveDevice:
		return "no active playback device; start playback on a device first"
	default:
		return "the streaming service could not complete the request; try again"
	}
}
