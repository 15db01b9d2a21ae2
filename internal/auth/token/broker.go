// Package token owns the credential lifecycle: freshness checks, the
// per-owner single-flight refresh, and persistence of rotated secrets.
package token

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/overplay/spotify-broker/internal/db"
	"github.com/overplay/spotify-broker/internal/db/models"
	"github.com/overplay/spotify-broker/internal/errs"
	"github.com/overplay/spotify-broker/internal/lock"
	"github.com/overplay/spotify-broker/internal/secrets"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultExpiryBuffer is how long before expiry a secret is already
// treated as stale. The boundary itself counts as stale.
const DefaultExpiryBuffer = 60 * time.Second

// DefaultRefreshTimeout bounds the upstream token-refresh call.
const DefaultRefreshTimeout = 8 * time.Second

// Store is the slice of the credential store the broker needs.
type Store interface {
	GetActiveForOwner(ctx context.Context, ownerID string) (*models.LinkedAccount, error)
	PersistRefresh(ctx context.Context, accountID string, upd db.RefreshUpdate) (*models.LinkedAccount, error)
}

// Credential is the in-memory projection handed to callers. It is
// recomputed from the store on every call and never shared across owners.
type Credential struct {
	AccessSecret string
	ExpiresAt    time.Time
	Scope        string
}

// Broker hands out valid access secrets. At most one refresh per owner is
// in flight at a time; owners never block each other.
type Broker struct {
	store Store
	codec *secrets.Codec
	locks lock.KeyedLock
	oauth *oauth2.Config
	log   *zap.Logger

	buffer         time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
}

// Options tunes broker timing. Zero values take the defaults.
type Options struct {
	ExpiryBuffer   time.Duration
	RefreshTimeout time.Duration
}

// NewBroker constructs a broker over its collaborators.
func NewBroker(store Store, codec *secrets.Codec, locks lock.KeyedLock, oauth *oauth2.Config, log *zap.Logger, opts Options) *Broker {
	if opts.ExpiryBuffer <= 0 {
		opts.ExpiryBuffer = DefaultExpiryBuffer
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = DefaultRefreshTimeout
	}
	return &Broker{
		store:          store,
		codec:          codec,
		locks:          locks,
		oauth:          oauth,
		log:            log,
		buffer:         opts.ExpiryBuffer,
		refreshTimeout: opts.RefreshTimeout,
		now:            time.Now,
	}
}

// AccessSecret returns a currently valid plaintext access secret for the
// owner. With force set the stored secret is treated as rejected and a
// refresh happens unless another holder already produced a newer one.
func (b *Broker) AccessSecret(ctx context.Context, ownerID string, force bool) (string, error) {
	cred, err := b.Credential(ctx, ownerID, force)
	if err != nil {
		return "", err
	}
	return cred.AccessSecret, nil
}

// Credential returns the full credential projection for the owner.
func (b *Broker) Credential(ctx context.Context, ownerID string, force bool) (*Credential, error) {
	acc, err := b.loadActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// Fast path: no lock, no upstream call. Dominates steady-state traffic.
	if !force {
		if cred, ok := b.fresh(acc); ok {
			return cred, nil
		}
	}
	seenAccess := acc.AccessSecretEncrypted

	release, err := b.locks.Acquire(ctx, ownerID)
	if err != nil {
		return nil, errs.Wrap(errs.KindRequestFailed, "acquire refresh lock", err)
	}
	defer release()

	// Re-check inside the critical section: another holder may have just
	// refreshed, and this is what collapses concurrent waiters into one
	// upstream call. A forced caller is satisfied only by a secret that
	// changed since it was rejected.
	acc, err = b.loadActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cred, ok := b.fresh(acc); ok {
		if !force || !bytes.Equal(acc.AccessSecretEncrypted, seenAccess) {
			return cred, nil
		}
	}

	return b.refresh(ctx, ownerID, acc)
}

func (b *Broker) loadActive(ctx context.Context, ownerID string) (*models.LinkedAccount, error) {
	acc, err := b.store.GetActiveForOwner(ctx, ownerID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errs.Wrap(errs.KindUnauthorized, "account not linked", err)
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindRequestFailed, "load linked account", err)
	}
	return acc, nil
}

// fresh decodes the stored access secret and checks the expiry buffer.
// now+buffer >= expiresAt counts as stale.
func (b *Broker) fresh(acc *models.LinkedAccount) (*Credential, bool) {
	if !acc.ExpiresAt.After(b.now().Add(b.buffer)) {
		return nil, false
	}
	secret, err := b.codec.Decrypt(acc.AccessSecretEncrypted)
	if err != nil {
		return nil, false
	}
	return &Credential{AccessSecret: secret, ExpiresAt: acc.ExpiresAt, Scope: acc.Scope}, true
}

// refresh runs inside the owner's critical section.
func (b *Broker) refresh(ctx context.Context, ownerID string, acc *models.LinkedAccount) (*Credential, error) {
	refreshSecret, err := b.codec.Decrypt(acc.RefreshSecretEncrypted)
	if err != nil {
		// Corrupt or undecipherable credential; retrying cannot help and
		// the user must re-link.
		return nil, errs.Wrap(errs.KindUnauthorized, "stored refresh secret undecodable", err)
	}

	rctx, cancel := context.WithTimeout(ctx, b.refreshTimeout)
	defer cancel()
	ts := b.oauth.TokenSource(rctx, &oauth2.Token{RefreshToken: refreshSecret})
	tok, err := ts.Token()
	if err != nil {
		b.log.Warn("upstream token refresh failed",
			zap.String("owner_id", ownerID),
			zap.String("account_id", acc.ID),
			zap.Error(err))
		return nil, errs.Wrap(errs.KindUnauthorized, "upstream refresh failed", err)
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = b.now().Add(time.Hour)
	}
	scope := acc.Scope
	if s, ok := tok.Extra("scope").(string); ok && s != "" {
		scope = s
	}

	accessEnc, err := b.codec.Encrypt(tok.AccessToken)
	if err != nil {
		return nil, errs.Wrap(errs.KindRequestFailed, "seal access secret", err)
	}
	upd := db.RefreshUpdate{
		AccessSecretEncrypted: accessEnc,
		ExpiresAt:             expiresAt,
		Scope:                 scope,
	}
	if tok.RefreshToken != "" && tok.RefreshToken != refreshSecret {
		// Upstream rotated the refresh secret. Absence means "keep the
		// existing one"; providers differ and neither policy is assumed.
		refreshEnc, err := b.codec.Encrypt(tok.RefreshToken)
		if err != nil {
			return nil, errs.Wrap(errs.KindRequestFailed, "seal refresh secret", err)
		}
		upd.RefreshSecretEncrypted = refreshEnc
	}

	if _, err := b.store.PersistRefresh(ctx, acc.ID, upd); err != nil {
		// The upstream refresh itself succeeded. Hand out the secret for
		// this call; the row is unchanged, so the next call refreshes
		// again inside the lock.
		b.log.Error("persist after successful refresh failed",
			zap.String("owner_id", ownerID),
			zap.String("account_id", acc.ID),
			zap.Error(err))
	} else {
		b.log.Info("refreshed access secret",
			zap.String("owner_id", ownerID),
			zap.String("account_id", acc.ID),
			zap.Time("expires_at", expiresAt),
			zap.Bool("refresh_secret_rotated", upd.RefreshSecretEncrypted != nil))
	}

	return &Credential{AccessSecret: tok.AccessToken, ExpiresAt: expiresAt, Scope: scope}, nil
}
