package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
)

func principal(role models.Role, tenantID *uuid.UUID) *Principal {
	return &Principal{
		User:   &models.User{ID: uuid.New(), Role: role, TenantID: tenantID},
		Claims: &Claims{TenantID: tenantID},
	}
}

func TestGuards(t *testing.T) {
	a := &models.Tenant{ID: uuid.New(), Subdomain: "a"}
	b := &models.Tenant{ID: uuid.New(), Subdomain: "b"}

	super := principal(models.RoleSuperadmin, nil)
	adminA := principal(models.RoleTenantAdmin, &a.ID)
	userA := principal(models.RoleTenantUser, &a.ID)

	cases := []struct {
		name   string
		guard  Guard
		p      *Principal
		tenant *models.Tenant
		allow  bool
	}{
		{"superadmin global", SuperadminOnly, super, nil, true},
		{"tenant admin on superadmin route", SuperadminOnly, adminA, nil, false},
		{"superadmin on tenant host", TenantScoped, super, a, false},
		{"member on own tenant", TenantScoped, userA, a, true},
		{"member on foreign tenant", TenantScoped, userA, b, false},
		{"member on global host", TenantScoped, userA, nil, false},
		{"admin on own tenant", TenantAdminOnly, adminA, a, true},
		{"user on admin route", TenantAdminOnly, userA, a, false},
		{"admin on foreign tenant", TenantAdminOnly, adminA, b, false},
		{"superadmin on admin route", TenantAdminOnly, super, a, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.guard(tc.p, tc.tenant)
			if tc.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.ErrForbidden)
			}
		})
	}
}

func TestCrossTenantIsolation(t *testing.T) {
	tenants := make([]*models.Tenant, 4)
	for i := range tenants {
		tenants[i] = &models.Tenant{ID: uuid.New()}
	}

	for _, owner := range tenants {
		for _, role := range []models.Role{models.RoleTenantAdmin, models.RoleTenantUser} {
			p := principal(role, &owner.ID)
			for _, other := range tenants {
				if other.ID == owner.ID {
					continue
				}
				assert.ErrorIs(t, TenantScoped(p, other), apperr.ErrForbidden)
				assert.ErrorIs(t, TenantAdminOnly(p, other), apperr.ErrForbidden)
			}
		}
	}
}

func TestGuardWithoutPrincipal(t *testing.T) {
	assert.ErrorIs(t, SuperadminOnly(nil, nil), apperr.ErrUnauthenticated)
	assert.ErrorIs(t, TenantScoped(nil, &models.Tenant{}), apperr.ErrUnauthenticated)
}
