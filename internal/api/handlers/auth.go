package handlers

import (
	"fmt"
	"net/http"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/auth"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/tenant"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(a *auth.Service) *AuthHandler {
	return &AuthHandler{auth: a}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) readLogin(w http.ResponseWriter, r *http.Request) (loginRequest, bool) {
	var req loginRequest
	if !decode(w, r, &req) {
		return req, false
	}
	if err := models.ValidateEmail(req.Email); err != nil {
		apperr.Respond(w, r, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err))
		return req, false
	}
	return req, true
}

func (h *AuthHandler) SuperadminLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readLogin(w, r)
	if !ok {
		return
	}
	resp, err := h.auth.LoginSuperadmin(r.Context(), req.Email, req.Password)
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) TenantLogin(w http.ResponseWriter, r *http.Request) {
	t := tenant.FromContext(r.Context())
	if t == nil {
		apperr.Respond(w, r, apperr.ErrTenantRequired)
		return
	}
	req, ok := h.readLogin(w, r)
	if !ok {
		return
	}
	resp, err := h.auth.LoginTenant(r.Context(), t, req.Email, req.Password)
	if err != nil {
		apperr.Respond(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
