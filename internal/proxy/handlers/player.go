package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/overplay/spotify-broker/internal/upstream"
)

// PlayerStateHandler returns the owner's current playback state.
// 204 when the provider reports nothing playing.
func PlayerStateHandler(client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := client.PlayerState(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			writeClassifiedError(w, err)
			return
		}
		if state == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(state)
	}
}

// PlayHandler starts or resumes playback. The optional body narrows what
// to play.
func PlayHandler(client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts upstream.PlayOptions
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
				Kind: "request_failed", Message: "invalid request body",
			}})
			return
		}
		if err := client.Play(r.Context(), chi.URLParam(r, "ownerID"), &opts); err != nil {
			writeClassifiedError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PauseHandler pauses playback.
func PauseHandler(client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := client.Pause(r.Context(), chi.URLParam(r, "ownerID")); err != nil {
			writeClassifiedError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NextHandler skips to the next track.
func NextHandler(client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := client.Next(r.Context(), chi.URLParam(r, "ownerID")); err != nil {
			writeClassifiedError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PreviousHandler skips to the previous track.
func PreviousHandler(client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := client.Previous(r.Context(), chi.URLParam(r, "ownerID")); err != nil {
			writeClassifiedError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SeekHandler seeks the current track to position_ms.
func SeekHandler(client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positionMS, err := strconv.Atoi(r.URL.Query().Get("position_ms"))
		if err != nil || positionMS < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
				Kind: "request_failed", Message: "position_ms must be a non-negative integer",
			}})
			return
		}
		if err := client.SeekTo(r.Context(), chi.URLParam(r, "ownerID"), positionMS); err != nil {
			writeClassifiedError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type transferRequest struct {
	DeviceIDs []string `json:"device_ids"`
	Play      bool     `json:"play"`
}

// TransferHandler moves playback to the given devices.
func TransferHandler(client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.DeviceIDs) == 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
				Kind: "request_failed", Message: "device_ids is required",
			}})
			return
		}
		if err := client.TransferTo(r.Context(), chi.URLParam(r, "ownerID"), req.DeviceIDs, req.Play); err != nil {
			writeClassifiedError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RecommendationsHandler forwards the seed query to the provider.
func RecommendationsHandler(client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := client.Recommendations(r.Context(), chi.URLParam(r, "ownerID"), r.URL.Query())
		if err != nil {
			writeClassifiedError(w, err)
			return
		}
		if recs == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(recs)
	}
}

// QueueHandler appends a track to the owner's playback queue.
func QueueHandler(client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uri := r.URL.Query().Get("uri")
		if uri == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
				Kind: "request_failed", Message: "uri is required",
			}})
			return
		}
		deviceID := r.URL.Query().Get("device_id")
		if err := client.Enqueue(r.Context(), chi.URLParam(r, "ownerID"), uri, deviceID); err != nil {
			writeClassifiedError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
