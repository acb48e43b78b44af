package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
)

func TestLoginSuperadmin(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.mem, f.codec, f.hasher)
	ctx := context.Background()

	resp, err := svc.LoginSuperadmin(ctx, "root@x.io", "password")
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := f.codec.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.super.ID, claims.PrincipalID)
	assert.Nil(t, claims.TenantID)

	_, err = svc.LoginSuperadmin(ctx, "root@x.io", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// Tenant admins cannot use the superadmin login.
	_, err = svc.LoginSuperadmin(ctx, "admin@acme.io", "password")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestLoginTenant(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.mem, f.codec, f.hasher)
	ctx := context.Background()

	resp, err := svc.LoginTenant(ctx, f.acme, "bob@acme.io", "password")
	require.NoError(t, err)

	claims, err := f.codec.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, claims.PrincipalID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, f.acme.ID, *claims.TenantID)

	_, err = svc.LoginTenant(ctx, f.beta, "bob@acme.io", "password")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.LoginTenant(ctx, nil, "bob@acme.io", "password")
	assert.ErrorIs(t, err, apperr.ErrTenantRequired)
}
