// Package db persists linked accounts. The store is the single source of
// truth for credentials: callers re-read it instead of holding long-lived
// in-memory copies, so multiple instances stay correct.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/overplay/spotify-broker/internal/db/models"
	"gorm.io/gorm"
)

// ErrNotFound indicates the owner has no active linked account.
var ErrNotFound = errors.New("db: linked account not found")

// Store is the credential store over gorm.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an initialized gorm handle.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// GetActiveForOwner returns the owner's active link. Revoked rows are
// never returned.
func (s *Store) GetActiveForOwner(ctx context.Context, ownerID string) (*models.LinkedAccount, error) {
	var acc models.LinkedAccount
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND revoked_at IS NULL", ownerID).
		Order("created_at DESC").
		First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// RefreshUpdate carries the rotated credential fields. RefreshSecretEncrypted
// is nil when upstream did not rotate the refresh secret, in which case the
// stored one is preserved unchanged.
type RefreshUpdate struct {
	AccessSecretEncrypted  []byte
	RefreshSecretEncrypted []byte
	ExpiresAt              time.Time
	Scope                  string
}

// PersistRefresh applies the result of a successful upstream refresh and
// returns the updated row.
func (s *Store) PersistRefresh(ctx context.Context, accountID string, upd RefreshUpdate) (*models.LinkedAccount, error) {
	fields := map[string]any{
		"access_secret_encrypted": upd.AccessSecretEncrypted,
		"expires_at":              upd.ExpiresAt,
		"scope":                   upd.Scope,
	}
	if upd.RefreshSecretEncrypted != nil {
		fields["refresh_secret_encrypted"] = upd.RefreshSecretEncrypted
	}

	res := s.db.WithContext(ctx).
		Model(&models.LinkedAccount{}).
		Where("id = ?", accountID).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var acc models.LinkedAccount
	if err := s.db.WithContext(ctx).First(&acc, "id = ?", accountID).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// Revoke marks the link permanently inactive. Calling it on an already
// revoked account is a no-op, so the original revocation time is kept.
func (s *Store) Revoke(ctx context.Context, accountID string) error {
	return s.db.WithContext(ctx).
		Model(&models.LinkedAccount{}).
		Where("id = ? AND revoked_at IS NULL", accountID).
		Update("revoked_at", time.Now()).Error
}
