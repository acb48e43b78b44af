package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/plan"
	"github.com/nikhilbhutani/tenantplatform/internal/tenant"
)

type SuperadminHandler struct {
	plans   *plan.Service
	tenants *tenant.Service
}

func NewSuperadminHandler(plans *plan.Service, tenants *tenant.Service) *SuperadminHandler {
	return &SuperadminHandler{plans: plans, tenants: tenants}
}

func (h *SuperadminHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var in plan.CreateInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.plans.Create(r.Context(), in)
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *SuperadminHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *SuperadminHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var in tenant.CreateTenantInput
	if !decode(w, r, &in) {
		return
	}
	t, _, err := h.tenants.CreateTenant(r.Context(), in)
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *SuperadminHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.ListTenants(r.Context())
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (h *SuperadminHandler) ListTenantUsers(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apperr.Respond(w, r, fmt.Errorf("%w: invalid tenant id", apperr.ErrInvalidInput))
		return
	}
	users, err := h.tenants.ListUsers(r.Context(), id)
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
