package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/go-auth-exchange/clients"
	"github.com/jrsteele09/go-auth-exchange/internal/database"
)

const (
	getClientQuery = `SELECT id, client_id, secret, COALESCE(redirect_url, ''), auth_code_expiration, access_token_expiration, refresh_token_expiration FROM auth_clients WHERE client_id = $1 AND deleted = false`

	upsertClientQuery = `INSERT INTO auth_clients (id, client_id, secret, redirect_url, auth_code_expiration, access_token_expiration, refresh_token_expiration)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (client_id) DO UPDATE SET secret = EXCLUDED.secret, redirect_url = EXCLUDED.redirect_url,
auth_code_expiration = EXCLUDED.auth_code_expiration, access_token_expiration = EXCLUDED.access_token_expiration,
refresh_token_expiration = EXCLUDED.refresh_token_expiration`
)

var _ clients.Repo = (*ClientRepo)(nil)

type ClientRepo struct {
	db database.DB
}

func New(db database.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

func (r *ClientRepo) Get(ctx context.Context, clientID string) (*clients.Client, error) {
	c := &clients.Client{}
	err := r.db.QueryRow(ctx, getClientQuery, clientID).Scan(
		&c.ID, &c.ClientID, &c.Secret, &c.RedirectURL,
		&c.AuthCodeExpiration, &c.AccessTokenExpiration, &c.RefreshTokenExpiration,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clients.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (r *ClientRepo) Upsert(ctx context.Context, c *clients.Client) error {
	_, err := r.db.Exec(ctx, upsertClientQuery,
		c.ID, c.ClientID, c.Secret, c.RedirectURL,
		c.AuthCodeExpiration, c.AccessTokenExpiration, c.RefreshTokenExpiration,
	)
	if err != nil {
		return fmt.Errorf("upsert client: %w", err)
	}
	return nil
}
