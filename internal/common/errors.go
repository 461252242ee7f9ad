// Package common defines shared constants and sentinel errors used across
// MedVault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorInvalidInput = errors.New("invalid input")

	// Authentication outcomes. All user-facing; deliberately uninformative
	// about the root cause so responses cannot be used as an oracle.
	ErrorInvalidCredentials = errors.New("invalid username or password")
	ErrorAccountLocked      = errors.New("account is temporarily locked")
	ErrorAccountInactive    = errors.New("account is inactive")

	// Token verification outcomes. Distinguishable for logging, collapsed
	// to a single unauthenticated response at the API boundary.
	ErrTokenExpired   = errors.New("token expired")
	ErrBadSignature   = errors.New("token signature invalid")
	ErrTokenMalformed = errors.New("token malformed")

	// Data integrity: ciphertext failed authentication on decrypt.
	ErrDecryption = errors.New("decryption failed")

	// Missing or invalid secret material. Fatal at startup.
	ErrorConfiguration = errors.New("configuration error")
)
