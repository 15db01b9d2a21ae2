// Package upstream performs authenticated calls against the streaming
// provider's resource API. Every call is wrapped with bearer auth, a
// single forced-refresh retry on credential rejection, and classification
// of the remaining failures.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/overplay/spotify-broker/internal/errs"
	"github.com/overplay/spotify-broker/internal/util"
	"go.uber.org/zap"
)

// DefaultBaseURL is the provider's resource API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// DefaultTimeout bounds a single outbound resource call.
const DefaultTimeout = 8 * time.Second

// TokenSource hands out access secrets; implemented by the token broker.
type TokenSource interface {
	AccessSecret(ctx context.Context, ownerID string, force bool) (string, error)
}

// Client is the resilient gateway to the provider API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	log        *zap.Logger
}

// NewClient builds a gateway client. Empty baseURL and non-positive
// timeout take the defaults.
func NewClient(tokens TokenSource, baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		tokens:     tokens,
		log:        log,
	}
}

// Request is a fixed outbound call shape.
type Request struct {
	Method   string
	Path     string // e.g. "/me/player/play"
	Query    url.Values
	Body     any  // JSON-encoded when non-nil
	Playback bool // playback-control call; a 404 classifies as no_active_device
}

// Call issues the request for the owner. On upstream credential rejection
// it forces one refresh and retries exactly once; a second rejection is
// surfaced as unauthorized with no further retry. Returns the raw body,
// nil for no-content responses.
func (c *Client) Call(ctx context.Context, ownerID string, req Request) (json.RawMessage, error) {
	secret, err := c.tokens.AccessSecret(ctx, ownerID, false)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(ctx, secret, req)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		secret, err = c.tokens.AccessSecret(ctx, ownerID, true)
		if err != nil {
			return nil, err
		}
		status, body, err = c.do(ctx, secret, req)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, &errs.Error{
				Kind:    errs.KindUnauthorized,
				Status:  status,
				Payload: body,
				Message: "upstream rejected credential after forced refresh",
			}
		}
	}

	if status < 200 || status >= 300 {
		kind := Classify(status, body, req.Playback)
		c.log.Warn("upstream call failed",
			zap.String("owner_id", ownerID),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", status),
			zap.String("kind", string(kind)),
			zap.String("body", util.TruncateBytes(body)))
		return nil, &errs.Error{
			Kind:    kind,
			Status:  status,
			Payload: body,
			Message: upstreamMessage(status, body),
		}
	}

	if status == http.StatusNoContent || len(body) == 0 {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

func (c *Client) do(ctx context.Context, secret string, req Request) (int, []byte, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var reqBody io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return 0, nil, errs.Wrap(errs.KindRequestFailed, "marshal request body", err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, reqBody)
	if err != nil {
		return 0, nil, errs.Wrap(errs.KindRequestFailed, "build request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+secret)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Timeouts and transport failures share one classification.
		return 0, nil, errs.Wrap(errs.KindRequestFailed, "upstream request failed", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errs.Wrap(errs.KindRequestFailed, "read upstream response", err)
	}
	return resp.StatusCode, b, nil
}
