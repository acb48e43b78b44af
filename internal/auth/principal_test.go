package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/store"
)

type fixture struct {
	mem    *store.Memory
	codec  *TokenCodec
	hasher *BcryptHasher
	acme   *models.Tenant
	beta   *models.Tenant
	super  *models.User
	admin  *models.User
	member *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		mem:    store.NewMemory(),
		codec:  NewTokenCodec("s3cret", "test", time.Hour),
		hasher: NewBcryptHasher(bcrypt.MinCost),
	}

	f.acme = &models.Tenant{ID: uuid.New(), Name: "Acme", Subdomain: "acme"}
	f.beta = &models.Tenant{ID: uuid.New(), Name: "Beta", Subdomain: "beta"}
	require.NoError(t, f.mem.CreateTenant(ctx, f.acme))
	require.NoError(t, f.mem.CreateTenant(ctx, f.beta))

	hash, err := f.hasher.Hash("password")
	require.NoError(t, err)

	f.super = &models.User{ID: uuid.New(), Email: "root@x.io", PasswordHash: hash, Role: models.RoleSuperadmin}
	f.admin = &models.User{ID: uuid.New(), TenantID: &f.acme.ID, Email: "admin@acme.io", PasswordHash: hash, Role: models.RoleTenantAdmin}
	f.member = &models.User{ID: uuid.New(), TenantID: &f.acme.ID, Email: "bob@acme.io", PasswordHash: hash, Role: models.RoleTenantUser}
	for _, u := range []*models.User{f.super, f.admin, f.member} {
		require.NoError(t, f.mem.CreateUser(ctx, u))
	}
	return f
}

func (f *fixture) bearer(t *testing.T, userID uuid.UUID, tenantID *uuid.UUID) string {
	t.Helper()
	tok, err := f.codec.Issue(userID, tenantID)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestResolvePrincipal(t *testing.T) {
	f := newFixture(t)
	r := NewPrincipalResolver(f.codec, f.mem)

	p, err := r.Resolve(context.Background(), f.bearer(t, f.admin.ID, &f.acme.ID))
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, p.User.ID)
	require.NotNil(t, p.Claims.TenantID)
	assert.Equal(t, f.acme.ID, *p.Claims.TenantID)
}

func TestResolvePrincipalClearsSuperadminTenant(t *testing.T) {
	f := newFixture(t)
	r := NewPrincipalResolver(f.codec, f.mem)

	p, err := r.Resolve(context.Background(), f.bearer(t, f.super.ID, &f.acme.ID))
	require.NoError(t, err)
	assert.True(t, p.User.IsSuperadmin())
	assert.Nil(t, p.Claims.TenantID)
}

func TestResolvePrincipalFailures(t *testing.T) {
	f := newFixture(t)
	r := NewPrincipalResolver(f.codec, f.mem)

	expired, err := f.codec.IssueWithTTL(f.member.ID, &f.acme.ID, -time.Minute)
	require.NoError(t, err)

	cases := map[string]string{
		"empty header":    "",
		"wrong scheme":    "Basic abc",
		"bare bearer":     "Bearer ",
		"garbage token":   "Bearer not.a.jwt",
		"expired token":   "Bearer " + expired,
		"unknown user":    f.bearer(t, uuid.New(), nil),
		"tenant mismatch": f.bearer(t, f.member.ID, &f.beta.ID),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), header)
			assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		})
	}
}
