package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/cache"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/store"
)

type Lookup interface {
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
}

// Resolver maps a request host to its tenant. Lookups go through an optional
// redis cache keyed by subdomain.
type Resolver struct {
	tenants Lookup
	cache   *cache.Cache
	ttl     time.Duration
}

func NewResolver(tenants Lookup, c *cache.Cache, ttl time.Duration) *Resolver {
	return &Resolver{tenants: tenants, cache: c, ttl: ttl}
}

// Resolve returns the tenant addressed by host, or nil for the global
// context.
func (r *Resolver) Resolve(ctx context.Context, host string) (*models.Tenant, error) {
	sub, err := SubdomainFromHost(host)
	if err != nil {
		return nil, err
	}
	if sub == "" {
		return nil, nil
	}
	return r.bySubdomain(ctx, sub)
}

func (r *Resolver) bySubdomain(ctx context.Context, sub string) (*models.Tenant, error) {
	if r.cache != nil {
		var t models.Tenant
		err := r.cache.Get(ctx, cacheKey(sub), &t)
		if err == nil {
			return &t, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("tenant cache read failed", "subdomain", sub, "error", err)
		}
	}

	t, err := r.tenants.GetTenantBySubdomain(ctx, sub)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrTenantNotFound
		}
		return nil, fmt.Errorf("resolve tenant %q: %w", sub, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey(sub), t, r.ttl); err != nil {
			slog.Warn("tenant cache write failed", "subdomain", sub, "error", err)
		}
	}
	return t, nil
}

// Invalidate drops the cached copy of a tenant after it changes.
func (r *Resolver) Invalidate(ctx context.Context, subdomain string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, cacheKey(subdomain)); err != nil {
		slog.Warn("tenant cache invalidate failed", "subdomain", subdomain, "error", err)
	}
}

func cacheKey(subdomain string) string {
	return "tenant:" + subdomain
}
