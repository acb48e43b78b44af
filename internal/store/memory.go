package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
)

var _ Store = (*Memory)(nil)

// Memory is a process-local Store. It enforces the same uniqueness rules as
// the postgres schema and serializes transactions behind one mutex.
type Memory struct {
	mu    sync.Mutex
	state *memState
}

func NewMemory() *Memory {
	return &Memory{state: newMemState()}
}

func (m *Memory) Ping(context.Context) error { return nil }

// WithTx runs fn against a copy of the state and swaps it in only when fn
// succeeds, so a failed transaction leaves no trace.
func (m *Memory) WithTx(_ context.Context, fn func(q Querier) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft := m.state.clone()
	if err := fn(draft); err != nil {
		return err
	}
	m.state = draft
	return nil
}

func (m *Memory) locked(fn func(s *memState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.state)
}

func (m *Memory) CreatePlan(ctx context.Context, p *models.Plan) error {
	return m.locked(func(s *memState) error { return s.CreatePlan(ctx, p) })
}

func (m *Memory) GetPlanByID(ctx context.Context, id uuid.UUID) (p *models.Plan, err error) {
	err = m.locked(func(s *memState) error { p, err = s.GetPlanByID(ctx, id); return err })
	return p, err
}

func (m *Memory) GetPlanByName(ctx context.Context, name string) (p *models.Plan, err error) {
	err = m.locked(func(s *memState) error { p, err = s.GetPlanByName(ctx, name); return err })
	return p, err
}

func (m *Memory) ListPlans(ctx context.Context) (plans []models.Plan, err error) {
	err = m.locked(func(s *memState) error { plans, err = s.ListPlans(ctx); return err })
	return plans, err
}

func (m *Memory) CreateTenant(ctx context.Context, t *models.Tenant) error {
	return m.locked(func(s *memState) error { return s.CreateTenant(ctx, t) })
}

func (m *Memory) GetTenantByID(ctx context.Context, id uuid.UUID) (t *models.Tenant, err error) {
	err = m.locked(func(s *memState) error { t, err = s.GetTenantByID(ctx, id); return err })
	return t, err
}

func (m *Memory) GetTenantShared(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return m.GetTenantByID(ctx, id)
}

func (m *Memory) GetTenantBySubdomain(ctx context.Context, subdomain string) (t *models.Tenant, err error) {
	err = m.locked(func(s *memState) error { t, err = s.GetTenantBySubdomain(ctx, subdomain); return err })
	return t, err
}

func (m *Memory) ListTenants(ctx context.Context) (tenants []models.Tenant, err error) {
	err = m.locked(func(s *memState) error { tenants, err = s.ListTenants(ctx); return err })
	return tenants, err
}

func (m *Memory) SetTenantPlan(ctx context.Context, tenantID, planID uuid.UUID) error {
	return m.locked(func(s *memState) error { return s.SetTenantPlan(ctx, tenantID, planID) })
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	return m.locked(func(s *memState) error { return s.CreateUser(ctx, u) })
}

func (m *Memory) GetUserByID(ctx context.Context, id uuid.UUID) (u *models.User, err error) {
	err = m.locked(func(s *memState) error { u, err = s.GetUserByID(ctx, id); return err })
	return u, err
}

func (m *Memory) GetTenantUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (u *models.User, err error) {
	err = m.locked(func(s *memState) error { u, err = s.GetTenantUserByEmail(ctx, tenantID, email); return err })
	return u, err
}

func (m *Memory) GetSuperadminByEmail(ctx context.Context, email string) (u *models.User, err error) {
	err = m.locked(func(s *memState) error { u, err = s.GetSuperadminByEmail(ctx, email); return err })
	return u, err
}

func (m *Memory) ListUsersByTenant(ctx context.Context, tenantID uuid.UUID) (users []models.User, err error) {
	err = m.locked(func(s *memState) error { users, err = s.ListUsersByTenant(ctx, tenantID); return err })
	return users, err
}

func (m *Memory) InsertUsageEvent(ctx context.Context, e *models.UsageEvent) error {
	return m.locked(func(s *memState) error { return s.InsertUsageEvent(ctx, e) })
}

func (m *Memory) CountUsageByFeature(ctx context.Context, tenantID uuid.UUID) (counts []models.FeatureCount, err error) {
	err = m.locked(func(s *memState) error { counts, err = s.CountUsageByFeature(ctx, tenantID); return err })
	return counts, err
}

// memState holds the tables. It implements Querier without locking; callers
// hold Memory.mu.
type memState struct {
	plans   map[uuid.UUID]models.Plan
	tenants map[uuid.UUID]models.Tenant
	users   map[uuid.UUID]models.User
	usage   []models.UsageEvent

	tenantOrder []uuid.UUID
	userOrder   []uuid.UUID
}

func newMemState() *memState {
	return &memState{
		plans:   make(map[uuid.UUID]models.Plan),
		tenants: make(map[uuid.UUID]models.Tenant),
		users:   make(map[uuid.UUID]models.User),
	}
}

func (s *memState) clone() *memState {
	return &memState{
		plans:       maps.Clone(s.plans),
		tenants:     maps.Clone(s.tenants),
		users:       maps.Clone(s.users),
		usage:       slices.Clone(s.usage),
		tenantOrder: slices.Clone(s.tenantOrder),
		userOrder:   slices.Clone(s.userOrder),
	}
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

func (s *memState) CreatePlan(_ context.Context, p *models.Plan) error {
	for _, existing := range s.plans {
		if existing.Name == p.Name {
			return fmt.Errorf("insert plan: %w", apperr.ErrPlanNameConflict)
		}
	}
	if p.MaxFeatures < 0 || p.MaxFeatures > models.MaxFeatureCeiling {
		return fmt.Errorf("insert plan: max_features %d out of range", p.MaxFeatures)
	}
	stamp(&p.CreatedAt)
	s.plans[p.ID] = *p
	return nil
}

func (s *memState) GetPlanByID(_ context.Context, id uuid.UUID) (*models.Plan, error) {
	p, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("get plan: %w", ErrNotFound)
	}
	return &p, nil
}

func (s *memState) GetPlanByName(_ context.Context, name string) (*models.Plan, error) {
	for _, p := range s.plans {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("get plan: %w", ErrNotFound)
}

func (s *memState) ListPlans(context.Context) ([]models.Plan, error) {
	plans := make([]models.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].MaxFeatures != plans[j].MaxFeatures {
			return plans[i].MaxFeatures < plans[j].MaxFeatures
		}
		return plans[i].Name < plans[j].Name
	})
	return plans, nil
}

func (s *memState) CreateTenant(_ context.Context, t *models.Tenant) error {
	for _, existing := range s.tenants {
		if existing.Subdomain == t.Subdomain {
			return fmt.Errorf("insert tenant: %w", apperr.ErrDuplicateSubdomain)
		}
	}
	if t.PlanID != nil {
		if _, ok := s.plans[*t.PlanID]; !ok {
			return fmt.Errorf("insert tenant: plan %s does not exist", t.PlanID)
		}
	}
	stamp(&t.CreatedAt)
	s.tenants[t.ID] = *t
	s.tenantOrder = append(s.tenantOrder, t.ID)
	return nil
}

func (s *memState) GetTenantByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, ok := s.tenants[id]
	if !ok {
		return nil, fmt.Errorf("get tenant: %w", ErrNotFound)
	}
	return &t, nil
}

func (s *memState) GetTenantShared(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.GetTenantByID(ctx, id)
}

func (s *memState) GetTenantBySubdomain(_ context.Context, subdomain string) (*models.Tenant, error) {
	for _, t := range s.tenants {
		if t.Subdomain == subdomain {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("get tenant: %w", ErrNotFound)
}

func (s *memState) ListTenants(context.Context) ([]models.Tenant, error) {
	tenants := make([]models.Tenant, 0, len(s.tenantOrder))
	for _, id := range s.tenantOrder {
		tenants = append(tenants, s.tenants[id])
	}
	return tenants, nil
}

func (s *memState) SetTenantPlan(_ context.Context, tenantID, planID uuid.UUID) error {
	t, ok := s.tenants[tenantID]
	if !ok {
		return fmt.Errorf("set tenant plan: %w", ErrNotFound)
	}
	if _, ok := s.plans[planID]; !ok {
		return fmt.Errorf("set tenant plan: plan %s does not exist", planID)
	}
	t.PlanID = &planID
	s.tenants[tenantID] = t
	return nil
}

func (s *memState) CreateUser(_ context.Context, u *models.User) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if u.TenantID != nil {
		if _, ok := s.tenants[*u.TenantID]; !ok {
			return fmt.Errorf("insert user: tenant %s does not exist", u.TenantID)
		}
	}
	for _, existing := range s.users {
		if existing.Email != u.Email {
			continue
		}
		switch {
		case u.TenantID == nil && existing.TenantID == nil:
			return fmt.Errorf("insert user: %w", apperr.ErrEmailTaken)
		case u.TenantID != nil && existing.BelongsTo(*u.TenantID):
			return fmt.Errorf("insert user: %w", apperr.ErrDuplicateEmailInTenant)
		}
	}
	stamp(&u.CreatedAt)
	s.users[u.ID] = *u
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

func (s *memState) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", ErrNotFound)
	}
	return &u, nil
}

func (s *memState) GetTenantUserByEmail(_ context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email && u.BelongsTo(tenantID) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", ErrNotFound)
}

func (s *memState) GetSuperadminByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email && u.IsSuperadmin() {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", ErrNotFound)
}

func (s *memState) ListUsersByTenant(_ context.Context, tenantID uuid.UUID) ([]models.User, error) {
	users := []models.User{}
	for _, id := range s.userOrder {
		if u := s.users[id]; u.BelongsTo(tenantID) {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *memState) InsertUsageEvent(_ context.Context, e *models.UsageEvent) error {
	if _, ok := s.tenants[e.TenantID]; !ok {
		return fmt.Errorf("insert usage event: tenant %s does not exist", e.TenantID)
	}
	stamp(&e.CreatedAt)
	s.usage = append(s.usage, *e)
	return nil
}

func (s *memState) CountUsageByFeature(_ context.Context, tenantID uuid.UUID) ([]models.FeatureCount, error) {
	byFeature := make(map[string]int)
	var order []string
	for _, e := range s.usage {
		if e.TenantID != tenantID {
			continue
		}
		if _, seen := byFeature[e.Feature]; !seen {
			order = append(order, e.Feature)
		}
		byFeature[e.Feature]++
	}

	counts := make([]models.FeatureCount, 0, len(order))
	for _, f := range order {
		counts = append(counts, models.FeatureCount{Feature: f, Count: byFeature[f]})
	}
	return counts, nil
}
