package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go.uber.org/zap"
)

func TestPlayerOperations_RequestShapes(t *testing.T) {
	type captured struct {
		method string
		path   string
		query  url.Values
		body   string
	}

	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
		wantQuery  url.Values
		wantBody   string
	}{
		{
			name: "player state",
			call: func(c *Client) error {
				_, err := c.PlayerState(context.Background(), "owner-1")
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/me/player",
		},
		{
			name: "resume without options",
			call: func(c *Client) error {
				return c.Play(context.Background(), "owner-1", &PlayOptions{})
			},
			wantMethod: http.MethodPut,
			wantPath:   "/me/player/play",
		},
		{
			name: "play context",
			call: func(c *Client) error {
				return c.Play(context.Background(), "owner-1", &PlayOptions{ContextURI: "spotify:album:abc"})
			},
			wantMethod: http.MethodPut,
			wantPath:   "/me/player/play",
			wantBody:   `{"context_uri":"spotify:album:abc"}`,
		},
		{
			name: "pause",
			call: func(c *Client) error {
				return c.Pause(context.Background(), "owner-1")
			},
			wantMethod: http.MethodPut,
			wantPath:   "/me/player/pause",
		},
		{
			name: "next",
			call: func(c *Client) error {
				return c.Next(context.Background(), "owner-1")
			},
			wantMethod: http.MethodPost,
			wantPath:   "/me/player/next",
		},
		{
			name: "previous",
			call: func(c *Client) error {
				return c.Previous(context.Background(), "owner-1")
			},
			wantMethod: http.MethodPost,
			wantPath:   "/me/player/previous",
		},
		{
			name: "seek",
			call: func(c *Client) error {
				return c.SeekTo(context.Background(), "owner-1", 42000)
			},
			wantMethod: http.MethodPut,
			wantPath:   "/me/player/seek",
			wantQuery:  url.Values{"position_ms": {"42000"}},
		},
		{
			name: "transfer",
			call: func(c *Client) error {
				return c.TransferTo(context.Background(), "owner-1", []string{"device-a"}, true)
			},
			wantMethod: http.MethodPut,
			wantPath:   "/me/player",
			wantBody:   `{"device_ids":["device-a"],"play":true}`,
		},
		{
			name: "recommendations",
			call: func(c *Client) error {
				_, err := c.Recommendations(context.Background(), "owner-1", url.Values{"seed_genres": {"jazz"}})
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/recommendations",
			wantQuery:  url.Values{"seed_genres": {"jazz"}},
		},
		{
			name: "enqueue",
			call: func(c *Client) error {
				return c.Enqueue(context.Background(), "owner-1", "spotify:track:xyz", "device-a")
			},
			wantMethod: http.MethodPost,
			wantPath:   "/me/player/queue",
			wantQuery:  url.Values{"uri": {"spotify:track:xyz"}, "device_id": {"device-a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got captured
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				got = captured{method: r.Method, path: r.URL.Path, query: r.URL.Query(), body: string(b)}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()
			client := NewClient(&stubTokens{secret: "valid-secret"}, srv.URL, 0, zap.NewNop())

			if err := tt.call(client); err != nil {
				t.Fatalf("call: %v", err)
			}
			if got.method != tt.wantMethod {
				t.Errorf("method = %s, want %s", got.method, tt.wantMethod)
			}
			if got.path != tt.wantPath {
				t.Errorf("path = %s, want %s", got.path, tt.wantPath)
			}
			for k, want := range tt.wantQuery {
				if got.query.Get(k) != want[0] {
					t.Errorf("query %s = %q, want %q", k, got.query.Get(k), want[0])
				}
			}
			if tt.wantBody != "" && got.body != tt.wantBody {
				t.Errorf("body = %s, want %s", got.body, tt.wantBody)
			}
			if tt.wantBody == "" && got.body != "" {
				t.Errorf("unexpected body %s", got.body)
			}
		})
	}
}
