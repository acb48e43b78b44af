package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/tenantplatform/internal/apperr"
	"github.com/nikhilbhutani/tenantplatform/internal/models"
)

var _ Store = (*Postgres)(nil)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Postgres struct {
	*queries
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{queries: &queries{db: pool}, pool: pool}
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Postgres) WithTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", uniqueViolation(err))
	}
	return nil
}

type queries struct {
	db dbtx
}

// uniqueViolation maps a 23505 on a known constraint to its domain error so
// the read-then-write race window still yields the right failure.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "tenants_subdomain_key":
		return apperr.ErrDuplicateSubdomain
	case "plans_name_key":
		return apperr.ErrPlanNameConflict
	case "users_tenant_email_key":
		return apperr.ErrDuplicateEmailInTenant
	case "users_superadmin_email_key":
		return apperr.ErrEmailTaken
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (q *queries) CreatePlan(ctx context.Context, p *models.Plan) error {
	err := q.db.QueryRow(ctx,
		`INSERT INTO plans (id, name, max_features) VALUES ($1, $2, $3)
		 RETURNING created_at`,
		p.ID, p.Name, p.MaxFeatures,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert plan: %w", uniqueViolation(err))
	}
	return nil
}

func (q *queries) GetPlanByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	return q.getPlan(ctx, "SELECT id, name, max_features, created_at FROM plans WHERE id = $1", id)
}

func (q *queries) GetPlanByName(ctx context.Context, name string) (*models.Plan, error) {
	return q.getPlan(ctx, "SELECT id, name, max_features, created_at FROM plans WHERE name = $1", name)
}

func (q *queries) getPlan(ctx context.Context, sql string, arg any) (*models.Plan, error) {
	var p models.Plan
	err := q.db.QueryRow(ctx, sql, arg).Scan(&p.ID, &p.Name, &p.MaxFeatures, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", notFound(err))
	}
	return &p, nil
}

func (q *queries) ListPlans(ctx context.Context) ([]models.Plan, error) {
	rows, err := q.db.Query(ctx, "SELECT id, name, max_features, created_at FROM plans ORDER BY max_features, name")
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	plans := []models.Plan{}
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.MaxFeatures, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (q *queries) CreateTenant(ctx context.Context, t *models.Tenant) error {
	err := q.db.QueryRow(ctx,
		`INSERT INTO tenants (id, name, subdomain, plan_id) VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		t.ID, t.Name, t.Subdomain, t.PlanID,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", uniqueViolation(err))
	}
	return nil
}

const tenantColumns = "id, name, subdomain, plan_id, created_at"

func (q *queries) GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return q.getTenant(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE id = $1", id)
}

func (q *queries) GetTenantShared(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return q.getTenant(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE id = $1 FOR SHARE", id)
}

func (q *queries) GetTenantBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	return q.getTenant(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE subdomain = $1", subdomain)
}

func (q *queries) getTenant(ctx context.Context, sql string, arg any) (*models.Tenant, error) {
	var t models.Tenant
	err := q.db.QueryRow(ctx, sql, arg).Scan(&t.ID, &t.Name, &t.Subdomain, &t.PlanID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", notFound(err))
	}
	return &t, nil
}

func (q *queries) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	rows, err := q.db.Query(ctx, "SELECT "+tenantColumns+" FROM tenants ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	tenants := []models.Tenant{}
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Subdomain, &t.PlanID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (q *queries) SetTenantPlan(ctx context.Context, tenantID, planID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, "UPDATE tenants SET plan_id = $2 WHERE id = $1", tenantID, planID)
	if err != nil {
		return fmt.Errorf("set tenant plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set tenant plan: %w", ErrNotFound)
	}
	return nil
}

const userColumns = "id, tenant_id, email, name, password_hash, role, created_at"

func (q *queries) CreateUser(ctx context.Context, u *models.User) error {
	err := q.db.QueryRow(ctx,
		`INSERT INTO users (id, tenant_id, email, name, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		u.ID, u.TenantID, u.Email, u.Name, u.PasswordHash, string(u.Role),
	).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", uniqueViolation(err))
	}
	return nil
}

func (q *queries) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return q.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (q *queries) GetTenantUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	return q.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE tenant_id = $1 AND email = $2", tenantID, email)
}

func (q *queries) GetSuperadminByEmail(ctx context.Context, email string) (*models.User, error) {
	return q.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE role = 'superadmin' AND email = $1", email)
}

func (q *queries) getUser(ctx context.Context, sql string, args ...any) (*models.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", notFound(err))
	}
	return u, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (q *queries) ListUsersByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.User, error) {
	rows, err := q.db.Query(ctx, "SELECT "+userColumns+" FROM users WHERE tenant_id = $1 ORDER BY created_at", tenantID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (q *queries) InsertUsageEvent(ctx context.Context, e *models.UsageEvent) error {
	err := q.db.QueryRow(ctx,
		`INSERT INTO usage_events (id, tenant_id, user_id, feature) VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		e.ID, e.TenantID, e.UserID, e.Feature,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

func (q *queries) CountUsageByFeature(ctx context.Context, tenantID uuid.UUID) ([]models.FeatureCount, error) {
	rows, err := q.db.Query(ctx,
		`SELECT feature, COUNT(*) FROM usage_events
		 WHERE tenant_id = $1
		 GROUP BY feature`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("count usage: %w", err)
	}
	defer rows.Close()

	counts := []models.FeatureCount{}
	for rows.Next() {
		var fc models.FeatureCount
		if err := rows.Scan(&fc.Feature, &fc.Count); err != nil {
			return nil, fmt.Errorf("scan usage count: %w", err)
		}
		counts = append(counts, fc)
	}
	return counts, rows.Err()
}
