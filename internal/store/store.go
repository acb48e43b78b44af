// Package store is the persistence boundary: a uniqueness-constrained CRUD
// surface over tenants, plans, users and usage events, with atomic
// multi-row commits through WithTx.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("store: not found")

// Querier is the set of operations available both on the store and inside a
// transaction.
type Querier interface {
	CreatePlan(ctx context.Context, p *models.Plan) error
	GetPlanByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	GetPlanByName(ctx context.Context, name string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)

	CreateTenant(ctx context.Context, t *models.Tenant) error
	GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	// GetTenantShared reads the tenant and, inside a transaction, keeps it
	// from changing until the transaction ends.
	GetTenantShared(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	SetTenantPlan(ctx context.Context, tenantID, planID uuid.UUID) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetTenantUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
	GetSuperadminByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsersByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.User, error)

	InsertUsageEvent(ctx context.Context, e *models.UsageEvent) error
	CountUsageByFeature(ctx context.Context, tenantID uuid.UUID) ([]models.FeatureCount, error)
}

type Store interface {
	Querier
	// WithTx runs fn in a transaction. The transaction commits iff fn
	// returns nil.
	WithTx(ctx context.Context, fn func(q Querier) error) error
	Ping(ctx context.Context) error
}
