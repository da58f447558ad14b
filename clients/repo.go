package clients

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("client not found")

type Repo interface {
	Get(ctx context.Context, clientID string) (*Client, error)
	Upsert(ctx context.Context, client *Client) error
}
