// Package cryptox implements field-level encryption for sensitive record
// attributes. Values are sealed with AES-256-GCM and stored as compact
// string blobs in place of the plaintext, so designated columns can be
// encrypted without changing their type.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medvault/internal/common"
)

// blobVersion tags the on-disk format so the layout can evolve.
const blobVersion = "mv1"

// KeySize is the required encryption key length (AES-256).
const KeySize = 32

// FieldCipher seals and opens individual field values with a process-wide
// key. The key is loaded once at startup and never mutated; FieldCipher is
// safe for concurrent use.
//
// Blob layout: "mv1$<keyID>$<base64 nonce>$<base64 ciphertext>". The key
// identifier is recorded per blob so a future multi-key setup can route
// old blobs to retired keys without a format change.
type FieldCipher struct {
	keyID string
	aead  cipher.AEAD
}

// NewFieldCipher builds a FieldCipher from a 32-byte key. A key of any
// other length is a startup misconfiguration, not a per-request error.
func NewFieldCipher(keyID string, key []byte) (*FieldCipher, error) {
	if keyID == "" || strings.Contains(keyID, "$") {
		return nil, fmt.Errorf("%w: invalid encryption key id %q", common.ErrorConfiguration, keyID)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: encryption key must be %d bytes, got %d", common.ErrorConfiguration, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorConfiguration, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorConfiguration, err)
	}

	return &FieldCipher{keyID: keyID, aead: aead}, nil
}

// KeyID returns the identifier embedded into blobs produced by this cipher.
func (c *FieldCipher) KeyID() string {
	return c.keyID
}

// Encrypt seals plaintext into a storable blob. A fresh random nonce is
// generated per call, so encrypting the same value twice yields different
// blobs and equal plaintexts cannot be correlated in storage.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := common.GenerateRandByteArray(c.aead.NonceSize())
	ciphertext := c.aead.Seal(nil, nonce, []byte(plaintext), nil)

	enc := base64.RawStdEncoding
	return strings.Join([]string{
		blobVersion,
		c.keyID,
		enc.EncodeToString(nonce),
		enc.EncodeToString(ciphertext),
	}, "$"), nil
}

// Decrypt opens a blob produced by Encrypt. Any tampering with the nonce or
// ciphertext, a foreign key id, or a malformed blob yields ErrDecryption;
// corrupted plaintext is never returned.
func (c *FieldCipher) Decrypt(blob string) (string, error) {
	parts := strings.Split(blob, "$")
	if len(parts) != 4 || parts[0] != blobVersion {
		return "", fmt.Errorf("%w: malformed blob", common.ErrDecryption)
	}
	if parts[1] != c.keyID {
		return "", fmt.Errorf("%w: unknown key id %q", common.ErrDecryption, parts[1])
	}

	enc := base64.RawStdEncoding
	nonce, err := enc.DecodeString(parts[2])
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return "", fmt.Errorf("%w: malformed nonce", common.ErrDecryption)
	}
	ciphertext, err := enc.DecodeString(parts[3])
	if err != nil {
		return "", fmt.Errorf("%w: malformed ciphertext", common.ErrDecryption)
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value looks like a blob produced by Encrypt.
// Used by read paths that must tolerate rows written before encryption
// was enabled.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, blobVersion+"$")
}
