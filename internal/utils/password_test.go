package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

// bcrypt salts every hash, so hashing the same password twice must not
// produce the same string while both still verify.
func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	b, err := HashPassword("s3cret", 4)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, VerifyPassword(a, "s3cret"))
	assert.True(t, VerifyPassword(b, "s3cret"))
}
