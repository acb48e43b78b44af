package handlers

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/auth"
	"github.com/nikhilbhutani/tenantplatform/internal/billing"
	"github.com/nikhilbhutani/tenantplatform/internal/entitlement"
	"github.com/nikhilbhutani/tenantplatform/internal/plan"
	"github.com/nikhilbhutani/tenantplatform/internal/tenant"
)

var featurePattern = regexp.MustCompile(`^F[1-9][0-9]?$`)

// TenantHandler serves the tenant-host routes. Every route sits behind
// tenant resolution and a guard, so the tenant and principal are present.
type TenantHandler struct {
	plans        *plan.Service
	tenants      *tenant.Service
	entitlements *entitlement.Service
	billing      *billing.Service
}

func NewTenantHandler(plans *plan.Service, tenants *tenant.Service, ent *entitlement.Service, b *billing.Service) *TenantHandler {
	return &TenantHandler{plans: plans, tenants: tenants, entitlements: ent, billing: b}
}

func (h *TenantHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *TenantHandler) SelectPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlanID string `json:"plan_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.PlanID == "" {
		apperr.Respond(w, r, fmt.Errorf("%w: plan_id is required", apperr.ErrInvalidInput))
		return
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		apperr.Respond(w, r, fmt.Errorf("%w: invalid plan_id", apperr.ErrInvalidInput))
		return
	}

	t := tenant.FromContext(r.Context())
	p, err := h.tenants.SelectPlan(r.Context(), t, planID)
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeMessage(w, "Plan '%s' has been assigned to tenant %s.", p.Name, t.Name)
}

func (h *TenantHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in tenant.CreateUserInput
	if !decode(w, r, &in) {
		return
	}
	u, err := h.tenants.CreateUser(r.Context(), tenant.FromContext(r.Context()), in)
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *TenantHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.tenants.ListUsers(r.Context(), tenant.IDFromContext(r.Context()))
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *TenantHandler) UseFeature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Feature string `json:"feature"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !featurePattern.MatchString(req.Feature) {
		apperr.Respond(w, r, apperr.ErrInvalidFeatureCode)
		return
	}

	p := auth.PrincipalFromContext(r.Context())
	ev, err := h.entitlements.UseFeature(r.Context(), tenant.IDFromContext(r.Context()), p.User.ID, req.Feature)
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeMessage(w, "Feature %s used successfully", ev.Feature)
}

func (h *TenantHandler) Usage(w http.ResponseWriter, r *http.Request) {
	sum, err := h.billing.Summarize(r.Context(), tenant.IDFromContext(r.Context()))
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *TenantHandler) SendBilling(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if _, err := h.billing.SendBillingSummary(r.Context(), tenant.FromContext(r.Context()), p.User.Email); err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeMessage(w, "Billing email has been queued for sending")
}
