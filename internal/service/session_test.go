package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/marketplace-auth/internal/auth"
	"github.com/hongminglow/marketplace-auth/internal/models"
)

func TestValidateSessionReflectsCurrentState(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, customerRequest("ada@example.com", "+100"))

	f.update(t, models.RoleCustomer, "ada@example.com", func(a *models.Account) { a.Name = "Ada L." })
	session, err := f.svc.ValidateSession(context.Background(), reg.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", session.Profile.Base().Name)

	f.update(t, models.RoleCustomer, "ada@example.com", func(a *models.Account) { a.IsActive = false })
	_, err = f.svc.ValidateSession(context.Background(), reg.Token)
	assert.Same(t, ErrInvalidToken, err)
}

func TestValidateSessionRejectsBadTokens(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := f.svc.ValidateSession(context.Background(), token)
		assert.Same(t, ErrInvalidToken, err, token)
	}

	foreign := auth.NewTokenManager("other-secret", "marketplace-auth-test", time.Hour)
	token, err := foreign.Generate("some-id", models.RoleCustomer)
	require.NoError(t, err)
	_, err = f.svc.ValidateSession(context.Background(), token)
	assert.Same(t, ErrInvalidToken, err)

	orphan, err := f.svc.tokens.Generate("missing-id", models.RoleDelivery)
	require.NoError(t, err)
	_, err = f.svc.ValidateSession(context.Background(), orphan)
	assert.Same(t, ErrInvalidToken, err)
}

func TestValidateSessionSyntheticAdminNeedsPIN(t *testing.T) {
	f := newFixture(t)
	token, err := f.svc.tokens.Generate(SyntheticAdminID, models.RoleAdmin)
	require.NoError(t, err)

	_, err = f.svc.ValidateSession(context.Background(), token)
	assert.Same(t, ErrInvalidToken, err)
}

func TestValidateSessionRoleMustMatchStore(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, customerRequest("ada@example.com", "+100"))

	forged, err := f.svc.tokens.Generate(reg.Profile.Base().ID, models.RoleVendor)
	require.NoError(t, err)
	_, err = f.svc.ValidateSession(context.Background(), forged)
	assert.Same(t, ErrInvalidToken, err)
}
