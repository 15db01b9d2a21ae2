// Package secrets seals credential material before it reaches storage.
// Plaintext secrets exist only in memory; the database and logs see
// ciphertext blobs exclusively.
package secrets

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeyLen is the required symmetric key length in bytes.
const KeyLen = chacha20poly1305.KeySize

// ErrDecode indicates ciphertext that is malformed, truncated, or sealed
// under a key this codec does not hold. It is deterministic: the same blob
// fails the same way every time, and retrying does not help.
var ErrDecode = errors.New("secrets: undecodable ciphertext")

// Codec encrypts and decrypts secret strings with XChaCha20-Poly1305.
// Blobs are nonce-prefixed: nonce || ciphertext. The codec holds no
// mutable state and is safe for concurrent use.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec builds a codec from 32 bytes of key material. Key material is
// process-wide configuration loaded once at startup; rotating it without
// re-encrypting stored blobs renders them undecodable.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("secrets: key must be %d bytes, got %d", KeyLen, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("secrets: init aead: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// KeyFromHex decodes hex-encoded key material.
func KeyFromHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("secrets: key is not valid hex: %w", err)
	}
	if len(key) != KeyLen {
		return nil, fmt.Errorf("secrets: key must be %d bytes, got %d", KeyLen, len(key))
	}
	return key, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Codec) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("secrets: nonce: %w", err)
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+c.aead.Overhead())
	out = append(out, nonce...)
	out = append(out, c.aead.Seal(nil, nonce, []byte(plaintext), nil)...)
	return out, nil
}

// Decrypt opens a nonce-prefixed blob. Any tampering, truncation, or key
// mismatch fails with ErrDecode; garbage is never returned silently.
func (c *Codec) Decrypt(blob []byte) (string, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return "", ErrDecode
	}
	nonce, ct := blob[:chacha20poly1305.NonceSizeX], blob[chacha20poly1305.NonceSizeX:]
	plaintext, err := c.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrDecode
	}
	return string(plaintext), nil
}
