package jwt

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-that-is-long-enough"

func TestAccessTokenRoundTrip(t *testing.T) {
	id := Identity{
		UserID:      7,
		Name:        "Asha Rao",
		Email:       "asha@example.com",
		Role:        "RESIDENT",
		FlatID:      "A-3-204",
		Permissions: []string{"view_audit"},
	}

	token, err := GenerateAccessToken(id, secret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "RESIDENT", claims.Role)
	assert.Equal(t, "A-3-204", claims.FlatID)
	assert.Equal(t, []string{"view_audit"}, claims.Permissions)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(Identity{UserID: 1, Role: "ADMIN"}, secret, 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "another-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(Identity{UserID: 1, Role: "ADMIN"}, secret, -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, secret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshToken(t *testing.T) {
	refresh, err := GenerateRefreshToken(3, "tok-1", secret, 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(refresh, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, "tok-1", claims.TokenID)

	_, err = ValidateRefreshToken(refresh, "another-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRejectsNoneAlgorithm(t *testing.T) {
	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{UserID: 1, Role: "ADMIN"})
	s, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateAccessToken(s, secret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
