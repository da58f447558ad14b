package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/go-auth-exchange/internal/database"
	"github.com/jrsteele09/go-auth-exchange/users"
)

const selectUser = `SELECT u.id, u.username, COALESCE(u.email, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
COALESCE(u.default_tenant_id, ''), COALESCE(u.auth_client_ids, '{}'), COALESCE(c.password_hash, '')
FROM users u LEFT JOIN user_credentials c ON c.user_id = u.id`

const (
	getUserByIDQuery       = selectUser + ` WHERE u.id = $1`
	getUserByUsernameQuery = selectUser + ` WHERE u.username = $1`
	getUserByEmailQuery    = selectUser + ` WHERE lower(u.email) = lower($1)`

	firstTimeUserQuery   = `SELECT last_login IS NULL FROM users WHERE id = $1`
	updateLastLoginQuery = `UPDATE users SET last_login = now() WHERE id = $1`
	setPasswordQuery     = `UPDATE user_credentials SET password_hash = $1, updated_at = now() WHERE user_id = $2`

	upsertUserQuery = `INSERT INTO users (id, username, email, first_name, last_name, default_tenant_id, auth_client_ids)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email, first_name = EXCLUDED.first_name,
last_name = EXCLUDED.last_name, default_tenant_id = EXCLUDED.default_tenant_id, auth_client_ids = EXCLUDED.auth_client_ids`

	upsertCredentialsQuery = `INSERT INTO user_credentials (user_id, password_hash) VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()`
)

var _ users.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db database.DB
}

func New(db database.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.getOne(ctx, getUserByUsernameQuery, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getOne(ctx, getUserByEmailQuery, email)
}

func (r *UserRepo) FirstTimeUser(ctx context.Context, id string) (bool, error) {
	var first bool
	err := r.db.QueryRow(ctx, firstTimeUserQuery, id).Scan(&first)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, users.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("first time user: %w", err)
	}
	return first, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, updateLastLoginQuery, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) (*users.User, error) {
	u, err := r.GetByUsername(ctx, username)
	if errors.Is(err, users.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.CheckPassword(oldPassword) {
		return nil, users.ErrPasswordMismatch
	}
	return r.setPassword(ctx, u, newPassword)
}

func (r *UserRepo) ChangePassword(ctx context.Context, username, newPassword string) (*users.User, error) {
	u, err := r.GetByUsername(ctx, username)
	if errors.Is(err, users.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.setPassword(ctx, u, newPassword)
}

func (r *UserRepo) Upsert(ctx context.Context, u *users.User) error {
	if _, err := r.db.Exec(ctx, upsertUserQuery,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.DefaultTenantID, u.AuthClientIDs,
	); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	if u.PasswordHash == "" {
		return nil
	}
	if _, err := r.db.Exec(ctx, upsertCredentialsQuery, u.ID, u.PasswordHash); err != nil {
		return fmt.Errorf("upsert user credentials: %w", err)
	}
	return nil
}

func (r *UserRepo) setPassword(ctx context.Context, u *users.User, password string) (*users.User, error) {
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	tag, err := r.db.Exec(ctx, setPasswordQuery, hash, u.ID)
	if err != nil {
		return nil, fmt.Errorf("set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	u.PasswordHash = hash
	return u, nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg string) (*users.User, error) {
	u := &users.User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.DefaultTenantID, &u.AuthClientIDs, &u.PasswordHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
