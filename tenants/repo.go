package tenants

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user tenant not found")

type Repo interface {
	// GetByUser returns the user's first membership.
	GetByUser(ctx context.Context, userID string) (*UserTenant, error)
	Get(ctx context.Context, userID, tenantID string) (*UserTenant, error)
	SetStatus(ctx context.Context, userID, tenantID string, status UserStatus) error
	Upsert(ctx context.Context, ut *UserTenant) error
}
