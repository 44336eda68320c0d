package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/marketplace-auth/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", "marketplace-auth", 7*24*time.Hour)

	signed, err := tokens.Generate("acc-1", models.RoleVendor)
	require.NoError(t, err)

	session, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", session.AccountID)
	assert.Equal(t, models.RoleVendor, session.Role)
	assert.WithinDuration(t, session.IssuedAt.Add(7*24*time.Hour), session.ExpiresAt, time.Second)
}

func TestTokenRejections(t *testing.T) {
	tokens := NewTokenManager("test-secret", "marketplace-auth", time.Hour)
	signed, err := tokens.Generate("acc-1", models.RoleCustomer)
	require.NoError(t, err)

	otherKey := NewTokenManager("rotated-secret", "marketplace-auth", time.Hour)
	otherIssuer := NewTokenManager("test-secret", "someone-else", time.Hour)

	expired := NewTokenManager("test-secret", "marketplace-auth", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Generate("acc-1", models.RoleCustomer)
	require.NoError(t, err)

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "marketplace-auth",
			Subject:   "acc-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	badRoleSigned, err := badRole.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noneAlg := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "marketplace-auth", Subject: "acc-1"},
	})
	noneSigned, err := noneAlg.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		manager *TokenManager
		token   string
	}{
		{name: "rotated key", manager: otherKey, token: signed},
		{name: "wrong issuer", manager: otherIssuer, token: signed},
		{name: "expired", manager: tokens, token: stale},
		{name: "unknown role", manager: tokens, token: badRoleSigned},
		{name: "alg none", manager: tokens, token: noneSigned},
		{name: "malformed", manager: tokens, token: "not.a.token"},
		{name: "tampered", manager: tokens, token: signed + "x"},
		{name: "empty", manager: tokens, token: ""},
	}

	for _, tt := range tests {
		_, err := tt.manager.Validate(tt.token)
		assert.ErrorIs(t, err, ErrInvalidToken, tt.name)
	}
}
