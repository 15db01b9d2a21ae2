package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/overplay/spotify-broker/internal/upstream"
	"go.uber.org/zap"
)

type staticTokens struct{}

func (staticTokens) AccessSecret(ctx context.Context, ownerID string, force bool) (string, error) {
	return "valid-secret", nil
}

// newPlayerRouter wires the playback handlers over a fake provider API.
func newPlayerRouter(t *testing.T, provider http.HandlerFunc) chi.Router {
	t.Helper()
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)
	client := upstream.NewClient(staticTokens{}, srv.URL, 0, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/player/{ownerID}", func(r chi.Router) {
		r.Get("/", PlayerStateHandler(client))
		r.Put("/play", PlayHandler(client))
		r.Put("/pause", PauseHandler(client))
		r.Put("/seek", SeekHandler(client))
		r.Put("/transfer", TransferHandler(client))
		r.Post("/queue", QueueHandler(client))
	})
	return r
}

func TestPlayerStateHandler_NothingPlaying(t *testing.T) {
	router := newPlayerRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/player/owner-1/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestPauseHandler_NoActiveDevice(t *testing.T) {
	router := newPlayerRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"status":404,"reason":"NO_ACTIVE_DEVICE","message":"No active device found"}}`))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/player/owner-1/pause", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Kind != "no_active_device" {
		t.Errorf("kind = %q, want no_active_device", body.Error.Kind)
	}
}

func TestPlayHandler_PremiumRequired(t *testing.T) {
	router := newPlayerRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"status":403,"reason":"PREMIUM_REQUIRED","message":"Player command failed"}}`))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/player/owner-1/play", strings.NewReader(`{"context_uri":"spotify:album:abc"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Kind != "premium_required" {
		t.Errorf("kind = %q, want premium_required", body.Error.Kind)
	}
}

func TestSeekHandler_RejectsBadPosition(t *testing.T) {
	router := newPlayerRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called for an invalid position")
	})

	for _, q := range []string{"", "position_ms=-5", "position_ms=abc"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/player/owner-1/seek?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestTransferHandler_RequiresDeviceIDs(t *testing.T) {
	router := newPlayerRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called without device_ids")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/player/owner-1/transfer", strings.NewReader(`{"device_ids":[]}`))
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQueueHandler_RequiresURI(t *testing.T) {
	router := newPlayerRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called without a uri")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/player/owner-1/queue", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
