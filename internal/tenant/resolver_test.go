package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/cache"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/store"
)

type countingLookup struct {
	store.Querier
	calls int
}

func (c *countingLookup) GetTenantBySubdomain(ctx context.Context, sub string) (*models.Tenant, error) {
	c.calls++
	return c.Querier.GetTenantBySubdomain(ctx, sub)
}

func seed(t *testing.T) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	require.NoError(t, mem.CreateTenant(context.Background(), &models.Tenant{ID: uuid.New(), Name: "Acme", Subdomain: "acme"}))
	return mem
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(seed(t), nil, 0)

	for _, host := range []string{"localhost", "localhost:8000", "127.0.0.1", "example.com"} {
		tn, err := r.Resolve(ctx, host)
		require.NoError(t, err, host)
		assert.Nil(t, tn, host)
	}

	for _, host := range []string{"acme.localhost:8000", "acme.example.com"} {
		tn, err := r.Resolve(ctx, host)
		require.NoError(t, err, host)
		require.NotNil(t, tn, host)
		assert.Equal(t, "acme", tn.Subdomain)
	}

	_, err := r.Resolve(ctx, "ghost.localhost")
	assert.ErrorIs(t, err, apperr.ErrTenantNotFound)

	_, err = r.Resolve(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrMissingHost)
}

func TestResolveIsCaseSensitive(t *testing.T) {
	_, err := NewResolver(seed(t), nil, 0).Resolve(context.Background(), "ACME.localhost")
	assert.ErrorIs(t, err, apperr.ErrTenantNotFound)
}

func TestResolveReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	lookup := &countingLookup{Querier: seed(t)}
	r := NewResolver(lookup, cache.NewCache(client, "tp:"), time.Minute)

	first, err := r.Resolve(ctx, "acme.localhost")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, "acme.localhost")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, lookup.calls)
	assert.True(t, mr.Exists("tp:tenant:acme"))

	r.Invalidate(ctx, "acme")
	assert.False(t, mr.Exists("tp:tenant:acme"))

	_, err = r.Resolve(ctx, "acme.localhost")
	require.NoError(t, err)
	assert.Equal(t, 2, lookup.calls)
}

func TestResolveFallsBackWhenCacheDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { client.Close() })

	r := NewResolver(seed(t), cache.NewCache(client, "tp:"), time.Minute)
	tn, err := r.Resolve(context.Background(), "acme.localhost")
	require.NoError(t, err)
	assert.Equal(t, "acme", tn.Subdomain)
}
