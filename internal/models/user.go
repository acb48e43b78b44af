package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of principal kinds. A superadmin has no tenant; the
// two tenant roles always have one.
type Role string

const (
	RoleSuperadmin  Role = "superadmin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleTenantUser  Role = "tenant_user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleTenantAdmin, RoleTenantUser:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TenantID     *uuid.UUID `json:"tenant_id,omitempty" db:"tenant_id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name,omitempty" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

var (
	errUnknownRole       = errors.New("unknown role")
	errSuperadminTenant  = errors.New("superadmin cannot belong to a tenant")
	errTenantRoleNoOwner = errors.New("tenant role requires a tenant")
)

// Validate rejects role/tenant combinations that cannot exist.
func (u *User) Validate() error {
	if !u.Role.Valid() {
		return errUnknownRole
	}
	if u.Role == RoleSuperadmin && u.TenantID != nil {
		return errSuperadminTenant
	}
	if u.Role != RoleSuperadmin && u.TenantID == nil {
		return errTenantRoleNoOwner
	}
	return nil
}

func (u *User) IsSuperadmin() bool  { return u.Role == RoleSuperadmin }
func (u *User) IsTenantAdmin() bool { return u.Role == RoleTenantAdmin }

// BelongsTo reports whether u is a tenant member of tenantID.
func (u *User) BelongsTo(tenantID uuid.UUID) bool {
	return u.TenantID != nil && *u.TenantID == tenantID
}
