// Package errs defines the stable error taxonomy surfaced to callers.
// Upstream failures of any shape are mapped onto these kinds exactly once,
// at the gateway, so calling code can react deterministically.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a classified failure category.
type Kind string

const (
	// KindUnauthorized covers missing links, failed refreshes, undecodable
	// credentials, and double rejection after a forced refresh. The caller's
	// correct reaction is to prompt re-linking the account.
	KindUnauthorized Kind = "unauthorized"

	// KindPremiumRequired marks upstream 403s caused by a paid-tier restriction.
	KindPremiumRequired Kind = "premium_required"

	// KindForbidden marks upstream 403s with no premium-restriction signal.
	KindForbidden Kind = "forbidden"

	// KindNoActiveDevice marks upstream 404s on playback-control calls.
	KindNoActiveDevice Kind = "no_active_device"

	// KindRequestFailed covers every other non-success status, network
	// errors, and timeouts.
	KindRequestFailed Kind = "request_failed"
)

// Error carries a classified kind together with the original upstream
// status and payload so handlers can render a specific message.
type Error struct {
	Kind    Kind
	Status  int    // upstream HTTP status, 0 when the call never completed
	Payload []byte // raw upstream error body, for diagnostics only
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a classified error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a classified error keeping the underlying cause for logging
// and errors.Is checks.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the classified kind from an error chain.
// Unclassified errors report request_failed.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindRequestFailed
}
