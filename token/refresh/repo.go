package refresh

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("refresh token not found")

// Record is the server-side state behind an opaque refresh token. The client
// only ever sees the token string.
type Record struct {
	ClientID             string `json:"clientId"`
	UserID               string `json:"userId"`
	Username             string `json:"username"`
	AccessToken          string `json:"accessToken"`
	ExternalAuthToken    string `json:"externalAuthToken,omitempty"`
	ExternalRefreshToken string `json:"externalRefreshToken,omitempty"`
}

// Store keeps refresh records keyed by token until their ttl elapses.
type Store interface {
	Set(ctx context.Context, token string, rec *Record, ttl time.Duration) error
	Get(ctx context.Context, token string) (*Record, error)
	// Take fetches and deletes in one step so a token can be rotated only once.
	Take(ctx context.Context, token string) (*Record, error)
	Delete(ctx context.Context, token string) error
}
