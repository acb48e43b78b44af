package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
)

func TestUniqueViolationByConstraint(t *testing.T) {
	cases := []struct {
		constraint string
		want       error
	}{
		{"tenants_subdomain_key", apperr.ErrDuplicateSubdomain},
		{"plans_name_key", apperr.ErrPlanNameConflict},
		{"users_tenant_email_key", apperr.ErrDuplicateEmailInTenant},
		{"users_superadmin_email_key", apperr.ErrEmailTaken},
	}
	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			err := &pgconn.PgError{Code: "23505", ConstraintName: tc.constraint}
			assert.ErrorIs(t, uniqueViolation(err), tc.want)

			wrapped := fmt.Errorf("insert: %w", err)
			assert.ErrorIs(t, uniqueViolation(wrapped), tc.want)
		})
	}
}

func TestUniqueViolationPassesThrough(t *testing.T) {
	other := &pgconn.PgError{Code: "23505", ConstraintName: "usage_events_pkey"}
	assert.Same(t, other, uniqueViolation(other))

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "tenants_subdomain_key"}
	assert.Same(t, fk, uniqueViolation(fk))

	plain := errors.New("connection reset")
	assert.Same(t, plain, uniqueViolation(plain))

	assert.NoError(t, uniqueViolation(nil))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, notFound(fmt.Errorf("scan tenant: %w", pgx.ErrNoRows)), ErrNotFound)

	plain := errors.New("connection reset")
	assert.Same(t, plain, notFound(plain))
	assert.NoError(t, notFound(nil))
}
