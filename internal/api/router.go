package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/tenantplatform/internal/api/handlers"
	"github.com/nikhilbhutani/tenantplatform/internal/api/middleware"
	"github.com/nikhilbhutani/tenantplatform/internal/auth"
	"github.com/nikhilbhutani/tenantplatform/internal/billing"
	"github.com/nikhilbhutani/tenantplatform/internal/entitlement"
	"github.com/nikhilbhutani/tenantplatform/internal/plan"
	"github.com/nikhilbhutani/tenantplatform/internal/tenant"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth         *auth.Service
	Middleware   *auth.Middleware
	Plans        *plan.Service
	Tenants      *tenant.Service
	Entitlements *entitlement.Service
	Billing      *billing.Service

	// Checks are pinged by /readyz.
	Checks map[string]handlers.Pinger
	// Limiter is optional; nil disables rate limiting.
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string
}

type Router struct {
	mux *chi.Mux
	svc Services
}

func NewRouter(svc Services) *Router {
	return &Router{mux: chi.NewRouter(), svc: svc}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux
	m := rt.svc.Middleware

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	origins := rt.svc.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(middleware.CORS(origins))
	if rt.svc.Limiter != nil {
		r.Use(rt.svc.Limiter.Limit)
	}

	health := handlers.NewHealthHandler(rt.svc.Checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	authH := handlers.NewAuthHandler(rt.svc.Auth)

	superH := handlers.NewSuperadminHandler(rt.svc.Plans, rt.svc.Tenants)
	r.Route("/superadmin", func(r chi.Router) {
		r.Use(m.ResolveTenant)
		r.Post("/login", authH.SuperadminLogin)

		r.Group(func(r chi.Router) {
			r.Use(m.Authenticate)
			r.Use(auth.Require(auth.SuperadminOnly))

			r.Post("/plans", superH.CreatePlan)
			r.Get("/plans", superH.ListPlans)
			r.Post("/tenants", superH.CreateTenant)
			r.Get("/tenants", superH.ListTenants)
			r.Get("/tenants/{id}/users", superH.ListTenantUsers)
		})
	})

	tenantH := handlers.NewTenantHandler(rt.svc.Plans, rt.svc.Tenants, rt.svc.Entitlements, rt.svc.Billing)
	r.Route("/tenant", func(r chi.Router) {
		r.Use(m.ResolveTenant)
		r.Post("/login", authH.TenantLogin)

		r.Group(func(r chi.Router) {
			r.Use(m.Authenticate)

			r.With(auth.Require(auth.TenantScoped)).Get("/plans", tenantH.ListPlans)
			r.With(auth.Require(auth.TenantScoped)).Post("/features/use", tenantH.UseFeature)

			r.Group(func(r chi.Router) {
				r.Use(auth.Require(auth.TenantAdminOnly))
				r.Post("/plan/select", tenantH.SelectPlan)
				r.Post("/users", tenantH.CreateUser)
				r.Get("/users", tenantH.ListUsers)
				r.Get("/usage", tenantH.Usage)
				r.Post("/billing/send", tenantH.SendBilling)
			})
		})
	})

	return r
}
