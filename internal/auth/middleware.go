package auth

import (
	"context"
	"net/http"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/tenant"
)

type TenantResolver interface {
	Resolve(ctx context.Context, host string) (*models.Tenant, error)
}

// Middleware chains tenant resolution, authentication and authorization in
// front of a handler. Each step writes the error response and stops the
// chain on failure.
type Middleware struct {
	tenants    TenantResolver
	principals *PrincipalResolver
}

func NewMiddleware(tenants TenantResolver, principals *PrincipalResolver) *Middleware {
	return &Middleware{tenants: tenants, principals: principals}
}

func (m *Middleware) ResolveTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, err := m.tenants.Resolve(r.Context(), r.Host)
		if err != nil {
			apperr.Respond(w, r, err)
			return
		}
		ctx := r.Context()
		if t != nil {
			ctx = tenant.WithTenant(ctx, t)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := m.principals.Resolve(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			apperr.Respond(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// Require admits the request only if guard g allows the authenticated
// principal in the resolved tenant context.
func Require(g Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g(PrincipalFromContext(r.Context()), tenant.FromContext(r.Context())); err != nil {
				apperr.Respond(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
