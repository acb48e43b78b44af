package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserValidate(t *testing.T) {
	tid := uuid.New()

	cases := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{"superadmin without tenant", User{Role: RoleSuperadmin}, false},
		{"superadmin with tenant", User{Role: RoleSuperadmin, TenantID: &tid}, true},
		{"tenant admin with tenant", User{Role: RoleTenantAdmin, TenantID: &tid}, false},
		{"tenant admin without tenant", User{Role: RoleTenantAdmin}, true},
		{"tenant user without tenant", User{Role: RoleTenantUser}, true},
		{"unknown role", User{Role: "owner", TenantID: &tid}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.user.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserBelongsTo(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	u := User{Role: RoleTenantUser, TenantID: &a}

	assert.True(t, u.BelongsTo(a))
	assert.False(t, u.BelongsTo(b))
	assert.False(t, (&User{Role: RoleSuperadmin}).BelongsTo(a))
}
