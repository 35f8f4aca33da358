package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateJWT(42, "staff", secret, 1)
	require.NoError(t, err)

	userID, role, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "staff", role)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, "citizen", []byte("secret-a"), 1)
	require.NoError(t, err)

	_, _, err = ParseJWT(token, []byte("secret-b"))
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT(42, "citizen", []byte("secret"), -1)
	require.NoError(t, err)

	_, _, err = ParseJWT(token, []byte("secret"))
	assert.Error(t, err)
}
