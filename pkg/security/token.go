package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMalformed means the string is not a parseable three-part compact JWT.
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenSignatureInvalid means the token parsed but the HMAC did not
	// verify against the configured secret (or the alg was not HMAC).
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// TokenClaims is the payload carried by an access token: the principal id
// in "sub", the prefixed role claims in "roles", and epoch-second "iat"/"exp".
type TokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// IsExpired reports whether the token is expired at the given instant.
// A token with no expiry claim is treated as expired.
func (c *TokenClaims) IsExpired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !now.Before(c.ExpiresAt.Time)
}

// TokenCodec issues and verifies HS256-signed access tokens. It holds only
// the signing secret and the configured TTL, both read-only, so a single
// codec is safe for concurrent use across requests.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a codec signing with the given secret. Tokens expire
// ttl after issuance.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for the principal. Roles must already carry
// the claim prefix (e.g. "ROLE_ADMIN"); the codec embeds them as supplied.
func (tc *TokenCodec) Issue(principalID string, roles []string, now time.Time) (string, error) {
	claims := TokenClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tc.secret)
}

// Decode verifies the signature and returns the claims. Expiry is NOT
// checked here: an expired-but-authentic token decodes successfully, and the
// caller decides what expiry means via IsExpired.
func (tc *TokenCodec) Decode(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tc.secret, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrTokenMalformed
		}
		return nil, ErrTokenSignatureInvalid
	}

	return claims, nil
}
