package auth

import (
	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
)

// Guard decides whether principal p may act in tenant context t (nil for the
// global context). Denials are apperr.ErrForbidden whatever the reason, so a
// caller cannot tell a wrong role from a foreign tenant.
type Guard func(p *Principal, t *models.Tenant) error

func SuperadminOnly(p *Principal, _ *models.Tenant) error {
	if p == nil {
		return apperr.ErrUnauthenticated
	}
	if !p.User.IsSuperadmin() {
		return apperr.ErrForbidden
	}
	return nil
}

func TenantScoped(p *Principal, t *models.Tenant) error {
	if p == nil {
		return apperr.ErrUnauthenticated
	}
	if p.User.IsSuperadmin() || t == nil || !p.User.BelongsTo(t.ID) {
		return apperr.ErrForbidden
	}
	return nil
}

func TenantAdminOnly(p *Principal, t *models.Tenant) error {
	if err := TenantScoped(p, t); err != nil {
		return err
	}
	if !p.User.IsTenantAdmin() {
		return apperr.ErrForbidden
	}
	return nil
}
