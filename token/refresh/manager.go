package refresh

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// tokenLength is the number of random bytes in a refresh token (256 bits).
const tokenLength = 32

// Manager handles refresh token creation and lookup
type Manager struct {
	store Store
}

// NewManager creates a new refresh token manager
func NewManager(store Store) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[refresh.NewManager] store is required")
	}
	return &Manager{store: store}, nil
}

// Create generates a new refresh token and stores rec against it for ttl
func (m *Manager) Create(ctx context.Context, rec *Record, ttl time.Duration) (string, error) {
	tokenBytes := make([]byte, tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.store.Set(ctx, tokenStr, rec, ttl); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Get retrieves a refresh record without consuming it
func (m *Manager) Get(ctx context.Context, token string) (*Record, error) {
	return m.store.Get(ctx, token)
}

// Take retrieves and removes a refresh record atomically
func (m *Manager) Take(ctx context.Context, token string) (*Record, error) {
	return m.store.Take(ctx, token)
}

// Delete removes a refresh token from storage
func (m *Manager) Delete(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}
