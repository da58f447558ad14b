package token

import (
	"context"
	"time"
)

// RevokedTokenStore records access tokens that must no longer be accepted.
// Entries only need to live as long as the token itself would have.
type RevokedTokenStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

var _ RevokedTokenStore = (*InMemoryRevokedTokenStore)(nil)

// InMemoryRevokedTokenStore is a simple in-memory implementation
type InMemoryRevokedTokenStore struct {
	set *expiringSet
}

func NewInMemoryRevokedTokenStore(now func() time.Time) *InMemoryRevokedTokenStore {
	return &InMemoryRevokedTokenStore{set: newExpiringSet(now)}
}

func (s *InMemoryRevokedTokenStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	s.set.add(token, ttl)
	return nil
}

func (s *InMemoryRevokedTokenStore) IsRevoked(_ context.Context, token string) (bool, error) {
	return s.set.contains(token), nil
}

// Cleanup removes expired entries and returns how many were dropped.
func (s *InMemoryRevokedTokenStore) Cleanup() int {
	return s.set.cleanup()
}
