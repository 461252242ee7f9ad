// Package auth implements the credential and token primitives of the server:
// argon2id password hashing, JWT issuing/verification, and the role model.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medvault/internal/common"
	"golang.org/x/crypto/argon2"
)

// PasswordParams are the argon2id work-factor settings. They are part of the
// startup configuration; changing them affects new hashes only, since every
// stored hash embeds the parameters it was created with.
type PasswordParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultPasswordParams returns the production work factors
// (64 MiB memory, 2 passes, 2 lanes).
func DefaultPasswordParams() PasswordParams {
	return PasswordParams{
		Time:    2,
		Memory:  64 * 1024,
		Threads: 2,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// HashPassword derives an argon2id hash of password with a fresh random salt
// and encodes it in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=2,p=2$<b64 salt>$<b64 digest>
//
// The encoded string is self-describing, so verification does not depend on
// the currently configured parameters. An empty password is rejected.
func HashPassword(password string, p PasswordParams) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", common.ErrorInvalidInput)
	}

	salt := common.GenerateRandByteArray(int(p.SaltLen))
	digest := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		enc.EncodeToString(salt), enc.EncodeToString(digest)), nil
}

// VerifyPassword reports whether password matches the encoded hash. The
// digest comparison is constant time. Malformed stored hashes return false
// rather than an error; the caller logs and treats them as a mismatch.
func VerifyPassword(password, encoded string) bool {
	salt, digest, p, ok := decodeHash(encoded)
	if !ok {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(digest)))
	return subtle.ConstantTimeCompare(digest, candidate) == 1
}

func decodeHash(encoded string) (salt, digest []byte, p PasswordParams, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, p, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, p, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return nil, nil, p, false
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return nil, nil, p, false
	}

	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, nil, p, false
	}
	digest, err = enc.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return nil, nil, p, false
	}

	return salt, digest, p, true
}
