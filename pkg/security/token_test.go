package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", 86400*time.Second)
	t0 := time.Now().Truncate(time.Second)

	token, err := codec.Issue("1", []string{"ROLE_ADMIN"}, t0)
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)

	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, []string{"ROLE_ADMIN"}, claims.Roles)
	assert.Equal(t, t0.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, t0.Add(86400*time.Second).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenExpiry(t *testing.T) {
	ttl := 86400 * time.Second
	codec := NewTokenCodec("test-secret", ttl)
	t0 := time.Now().Truncate(time.Second)

	token, err := codec.Issue("1", []string{"ROLE_ADMIN"}, t0)
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)

	assert.False(t, claims.IsExpired(t0))
	assert.False(t, claims.IsExpired(t0.Add(ttl-time.Second)))
	// Expiry is inclusive: now >= exp means expired.
	assert.True(t, claims.IsExpired(t0.Add(ttl)))
	assert.True(t, claims.IsExpired(t0.Add(ttl+time.Second)))
}

func TestExpiredTokenStillDecodes(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	token, err := codec.Issue("42", []string{"ROLE_USER"}, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)

	// Decode verifies authenticity only; expiry is the caller's decision.
	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.True(t, claims.IsExpired(time.Now()))
}

func TestWrongSecretFailsDecode(t *testing.T) {
	issuer := NewTokenCodec("secret-k1", time.Hour)
	verifier := NewTokenCodec("secret-k2", time.Hour)

	token, err := issuer.Issue("1", []string{"ROLE_USER"}, time.Now())
	require.NoError(t, err)

	_, err = verifier.Decode(token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestTamperedTokenFailsDecode(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	token, err := codec.Issue("1", []string{"ROLE_USER"}, time.Now())
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestMalformedToken(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	for _, bad := range []string{"", "not-a-token", "only.two"} {
		_, err := codec.Decode(bad)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", bad)
	}
}

func TestRolesPreservedAsSupplied(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	roles := []string{"ROLE_ADMIN", "ROLE_USER"}
	token, err := codec.Issue("7", roles, time.Now())
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, roles, claims.Roles)
}

func TestMissingExpiryIsExpired(t *testing.T) {
	claims := &TokenClaims{}
	assert.True(t, claims.IsExpired(time.Now()))
}
