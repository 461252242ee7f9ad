package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered JWT claims plus the account identity and role
// carried by every MedVault bearer token.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"uid"`
	Role      Role   `json:"role"`
}

// Issuer signs and verifies bearer tokens with a process-wide HMAC secret.
// The secret is loaded once at startup; Issuer is safe for concurrent use.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer builds an Issuer. An empty secret is a fatal misconfiguration:
// the constructor fails rather than letting the process sign tokens with
// predictable key material.
func NewIssuer(secret []byte) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: JWT secret key is not set", common.ErrorConfiguration)
	}
	return &Issuer{secret: secret, now: time.Now}, nil
}

// Issue mints a signed token for the account with the given role and TTL.
func (i *Issuer) Issue(accountID string, role Role, ttl time.Duration) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		AccountID: accountID,
		Role:      role,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates a token string and returns its claims. The signing method
// is pinned to HMAC, so a token claiming another algorithm is rejected before
// any of its claims are trusted. Failures map to distinguishable sentinels:
//
//	ErrTokenMalformed — not a parseable JWT
//	ErrBadSignature   — signature does not verify against the current key
//	ErrTokenExpired   — genuine token past its expiry
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, common.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		default:
			return nil, common.ErrBadSignature
		}
	}
	if !token.Valid {
		return nil, common.ErrBadSignature
	}

	return claims, nil
}
