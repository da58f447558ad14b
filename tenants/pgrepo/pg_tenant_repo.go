package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/go-auth-exchange/internal/database"
	"github.com/jrsteele09/go-auth-exchange/tenants"
)

const (
	getByUserQuery = `SELECT id, user_id, tenant_id, status FROM user_tenants WHERE user_id = $1 ORDER BY created_at LIMIT 1`
	getQuery       = `SELECT id, user_id, tenant_id, status FROM user_tenants WHERE user_id = $1 AND tenant_id = $2`
	setStatusQuery = `UPDATE user_tenants SET status = $1, updated_at = now() WHERE user_id = $2 AND tenant_id = $3`
	upsertQuery    = `INSERT INTO user_tenants (id, user_id, tenant_id, status) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, tenant_id) DO UPDATE SET status = EXCLUDED.status, updated_at = now()`
)

var _ tenants.Repo = (*TenantRepo)(nil)

type TenantRepo struct {
	db database.DB
}

func New(db database.DB) *TenantRepo {
	return &TenantRepo{db: db}
}

func (r *TenantRepo) GetByUser(ctx context.Context, userID string) (*tenants.UserTenant, error) {
	return r.scan(r.db.QueryRow(ctx, getByUserQuery, userID))
}

func (r *TenantRepo) Get(ctx context.Context, userID, tenantID string) (*tenants.UserTenant, error) {
	return r.scan(r.db.QueryRow(ctx, getQuery, userID, tenantID))
}

func (r *TenantRepo) SetStatus(ctx context.Context, userID, tenantID string, status tenants.UserStatus) error {
	tag, err := r.db.Exec(ctx, setStatusQuery, status.String(), userID, tenantID)
	if err != nil {
		return fmt.Errorf("set user tenant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenants.ErrNotFound
	}
	return nil
}

func (r *TenantRepo) Upsert(ctx context.Context, ut *tenants.UserTenant) error {
	if _, err := r.db.Exec(ctx, upsertQuery, ut.ID, ut.UserID, ut.TenantID, ut.Status.String()); err != nil {
		return fmt.Errorf("upsert user tenant: %w", err)
	}
	return nil
}

func (r *TenantRepo) scan(row pgx.Row) (*tenants.UserTenant, error) {
	ut := &tenants.UserTenant{}
	var status string
	err := row.Scan(&ut.ID, &ut.UserID, &ut.TenantID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tenants.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user tenant: %w", err)
	}
	parsed, ok := tenants.ParseUserStatus(status)
	if !ok {
		return nil, fmt.Errorf("get user tenant: unknown status %q", status)
	}
	ut.Status = parsed
	return ut, nil
}
