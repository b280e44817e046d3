package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.NotContains(t, hash, "hunter2!")

	match, err := ComparePassword("hunter2!", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = ComparePassword("hunter3!", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashIsSalted(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestComparePasswordRejectsGarbageHash(t *testing.T) {
	_, err := ComparePassword("whatever", "not-an-encoded-hash")
	assert.Error(t, err)
}
