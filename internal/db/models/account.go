package models

import "time"

// LinkedAccount stores one streaming-provider link per owner. Secret
// columns hold codec ciphertext; plaintext never touches the database.
//
// At most one active (revoked_at IS NULL) row may exist per owner. This is
// enforced by query discipline rather than a uniqueness constraint, because
// revoked history is retained.
type LinkedAccount struct {
	ID                     string `gorm:"primaryKey"` // UUID, stable for the life of the link
	OwnerID                string `gorm:"index:idx_owner_provider"`
	Provider               string `gorm:"index:idx_owner_provider"` // e.g. "spotify"
	AccessSecretEncrypted  []byte
	RefreshSecretEncrypted []byte
	ExpiresAt              time.Time
	Scope                  string     // space-delimited scopes granted upstream
	RevokedAt              *time.Time `gorm:"index"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
