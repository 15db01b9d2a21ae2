package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// Playback operations are fixed request shapes forwarded through Call.
// They add no retries beyond the gateway's single forced-refresh retry
// and cache nothing.

// PlayOptions narrows what to start playing. Zero value resumes playback.
type PlayOptions struct {
	ContextURI string   `json:"context_uri,omitempty"`
	URIs       []string `json:"uris,omitempty"`
	PositionMS int      `json:"position_ms,omitempty"`
}

// PlayerState returns the owner's current playback state, nil when the
// provider reports no content.
func (c *Client) PlayerState(ctx context.Context, ownerID string) (json.RawMessage, error) {
	return c.Call(ctx, ownerID, Request{
		Method:   http.MethodGet,
		Path:     "/me/player",
		Playback: true,
	})
}

// Play starts or resumes playback.
func (c *Client) Play(ctx context.Context, ownerID string, opts *PlayOptions) error {
	var body any
	if opts != nil && (opts.ContextURI != "" || len(opts.URIs) > 0 || opts.PositionMS > 0) {
		body = opts
	}
	_, err := c.Call(ctx, ownerID, Request{
		Method:   http.MethodPut,
		Path:     "/me/player/play",
		Body:     body,
		Playback: true,
	})
	return err
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context, ownerID string) error {
	_, err := c.Call(ctx, ownerID, Request{
		Method:   http.MethodPut,
		Path:     "/me/player/pause",
		Playback: true,
	})
	return err
}

// Next skips to the next track.
func (c *Client) Next(ctx context.Context, ownerID string) error {
	_, err := c.Call(ctx, ownerID, Request{
		Method:   http.MethodPost,
		Path:     "/me/player/next",
		Playback: true,
	})
	return err
}

// Previous skips to the previous track.
func (c *Client) Previous(ctx context.Context, ownerID string) error {
	_, err := c.Call(ctx, ownerID, Request{
		Method:   http.MethodPost,
		Path:     "/me/player/previous",
		Playback: true,
	})
	return err
}

// SeekTo seeks the current track to the given position.
func (c *Client) SeekTo(ctx context.Context, ownerID string, positionMS int) error {
	q := url.Values{"position_ms": {strconv.Itoa(positionMS)}}
	_, err := c.Call(ctx, ownerID, Request{
		Method:   http.MethodPut,
		Path:     "/me/player/seek",
		Query:    q,
		Playback: true,
	})
	return err
}

// TransferTo moves playback to the given devices, optionally starting it.
func (c *Client) TransferTo(ctx context.Context, ownerID string, deviceIDs []string, play bool) error {
	_, err := c.Call(ctx, ownerID, Request{
		Method: http.MethodPut,
		Path:   "/me/player",
		Body: map[string]any{
			"device_ids": deviceIDs,
			"play":       play,
		},
		Playback: true,
	})
	return err
}

// Recommendations fetches track recommendations for the given seed query.
func (c *Client) Recommendations(ctx context.Context, ownerID string, query url.Values) (json.RawMessage, error) {
	return c.Call(ctx, ownerID, Request{
		Method: http.MethodGet,
		Path:   "/recommendations",
		Query:  query,
	})
}

// Enqueue appends a track to the owner's playback queue.
func (c *Client) Enqueue(ctx context.Context, ownerID, uri, deviceID string) error {
	q := url.Values{"uri": {uri}}
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	_, err := c.Call(ctx, ownerID, Request{
		Method:   http.MethodPost,
		Path:     "/me/player/queue",
		Query:    q,
		Playback: true,
	})
	return err
}
