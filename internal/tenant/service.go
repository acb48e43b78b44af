package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
	"github.com/nikhilbhutani/tenantplatform/internal/store"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	store    store.Store
	hasher   PasswordHasher
	resolver *Resolver
}

func NewService(s store.Store, hasher PasswordHasher, resolver *Resolver) *Service {
	return &Service{store: s, hasher: hasher, resolver: resolver}
}

type CreateTenantInput struct {
	Name          string `json:"name"`
	Subdomain     string `json:"subdomain"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

func (in CreateTenantInput) validate() error {
	for _, err := range []error{
		models.ValidateTenantName(in.Name),
		models.ValidateSubdomain(in.Subdomain),
		models.ValidateEmail(in.AdminEmail),
		models.ValidatePassword(in.AdminPassword),
	} {
		if err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
		}
	}
	return nil
}

// CreateTenant registers a tenant together with its first tenant admin. Both
// rows are written in one transaction; on any failure neither exists.
func (s *Service) CreateTenant(ctx context.Context, in CreateTenantInput) (*models.Tenant, *models.User, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	hash, err := s.hasher.Hash(in.AdminPassword)
	if err != nil {
		return nil, nil, err
	}

	t := &models.Tenant{ID: uuid.New(), Name: in.Name, Subdomain: in.Subdomain}
	admin := &models.User{
		ID:           uuid.New(),
		TenantID:     &t.ID,
		Email:        in.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleTenantAdmin,
	}

	err = s.store.WithTx(ctx, func(q store.Querier) error {
		if err := absent(q.GetTenantBySubdomain(ctx, in.Subdomain)); err != nil {
			return conflict(err, apperr.ErrDuplicateSubdomain)
		}
		if err := absent(q.GetSuperadminByEmail(ctx, in.AdminEmail)); err != nil {
			return conflict(err, apperr.ErrEmailTaken)
		}
		if err := q.CreateTenant(ctx, t); err != nil {
			return err
		}
		return q.CreateUser(ctx, admin)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, admin, nil
}

func (s *Service) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	return s.store.ListTenants(ctx)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, err := s.store.GetTenantByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrTenantNotFound
	}
	return t, err
}

// ListUsers returns the members of a tenant.
func (s *Service) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]models.User, error) {
	if _, err := s.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.store.ListUsersByTenant(ctx, tenantID)
}

type CreateUserInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// CreateUser adds a regular member to tenant t.
func (s *Service) CreateUser(ctx context.Context, t *models.Tenant, in CreateUserInput) (*models.User, error) {
	if err := models.ValidateEmail(in.Email); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if err := models.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.New(),
		TenantID:     &t.ID,
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         models.RoleTenantUser,
	}
	err = s.store.WithTx(ctx, func(q store.Querier) error {
		if err := absent(q.GetTenantUserByEmail(ctx, t.ID, in.Email)); err != nil {
			return conflict(err, apperr.ErrDuplicateEmailInTenant)
		}
		if err := absent(q.GetSuperadminByEmail(ctx, in.Email)); err != nil {
			return conflict(err, apperr.ErrEmailTaken)
		}
		return q.CreateUser(ctx, u)
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// SelectPlan assigns plan planID to tenant t.
func (s *Service) SelectPlan(ctx context.Context, t *models.Tenant, planID uuid.UUID) (*models.Plan, error) {
	var plan *models.Plan
	err := s.store.WithTx(ctx, func(q store.Querier) error {
		var err error
		plan, err = q.GetPlanByID(ctx, planID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: plan not found", apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return q.SetTenantPlan(ctx, t.ID, plan.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("select plan: %w", err)
	}

	if s.resolver != nil {
		s.resolver.Invalidate(ctx, t.Subdomain)
	}
	return plan, nil
}

var errExists = errors.New("exists")

// absent turns a lookup result into nil when the row does not exist and
// errExists when it does.
func absent[T any](_ *T, err error) error {
	switch {
	case err == nil:
		return errExists
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return err
	}
}

func conflict(err, sentinel error) error {
	if errors.Is(err, errExists) {
		return sentinel
	}
	return err
}
