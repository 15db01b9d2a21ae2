package upstream

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/overplay/spotify-broker/internal/errs"
)

// apiError is the provider's error envelope:
// {"error":{"status":...,"reason":...,"message":...}}. Shapes vary across
// endpoints, so only reason and message text feed classification.
type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
}

// Classify maps an upstream failure response onto the error taxonomy.
// playback marks playback-control calls, where a 404 means no active device.
func Classify(status int, payload []byte, playback bool) errs.Kind {
	switch {
	case status == http.StatusUnauthorized:
		return errs.KindUnauthorized
	case status == http.StatusForbidden:
		if isPremiumRestriction(payload) {
			return errs.KindPremiumRequired
		}
		return errs.KindForbidden
	case status == http.StatusNotFound && playback:
		return errs.KindNoActiveDevice
	default:
		return errs.KindRequestFailed
	}
}

func isPremiumRestriction(payload []byte) bool {
	var body apiError
	if err := json.Unmarshal(payload, &body); err != nil {
		return false
	}
	if strings.EqualFold(body.Error.Reason, "PREMIUM_REQUIRED") {
		return true
	}
	return strings.Contains(strings.ToLower(body.Error.Message), "premium")
}

// upstreamMessage extracts the human-readable message from an error
// payload, falling back to the standard status text.
func upstreamMessage(status int, payload []byte) string {
	var body apiError
	if err := json.Unmarshal(payload, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return http.StatusText(status)
}
