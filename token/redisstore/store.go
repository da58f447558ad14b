// Package redisstore keeps refresh records, revoked access tokens and used
// authorization codes in Redis so several instances can share them.
package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-auth-exchange/token"
	"github.com/jrsteele09/go-auth-exchange/token/refresh"
	"github.com/redis/go-redis/v9"
)

const (
	refreshKeyPrefix = "refresh:"
	revokedKeyPrefix = "revoked:"
	codeKeyPrefix    = "code:"
)

var (
	_ refresh.Store           = (*Store)(nil)
	_ token.RevokedTokenStore = (*Store)(nil)
	_ token.UsedCodeGuard     = (*Store)(nil)
)

type Store struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// NewClient opens a go-redis client. It does not dial until first use.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Set(ctx context.Context, tok string, rec *refresh.Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal refresh record: %w", err)
	}
	if err := s.client.Set(ctx, s.refreshKey(tok), data, ttl).Err(); err != nil {
		return fmt.Errorf("set refresh record: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, tok string) (*refresh.Record, error) {
	data, err := s.client.Get(ctx, s.refreshKey(tok)).Bytes()
	return decodeRecord(data, err)
}

// Take uses GETDEL so concurrent rotations of one token see it exactly once.
func (s *Store) Take(ctx context.Context, tok string) (*refresh.Record, error) {
	data, err := s.client.GetDel(ctx, s.refreshKey(tok)).Bytes()
	return decodeRecord(data, err)
}

func (s *Store) Delete(ctx context.Context, tok string) error {
	if err := s.client.Del(ctx, s.refreshKey(tok)).Err(); err != nil {
		return fmt.Errorf("delete refresh record: %w", err)
	}
	return nil
}

func (s *Store) Revoke(ctx context.Context, accessToken string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.revokedKey(accessToken), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	n, err := s.client.Exists(ctx, s.revokedKey(accessToken)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (s *Store) MarkUsed(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	first, err := s.client.SetNX(ctx, s.prefix+codeKeyPrefix+id, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark code used: %w", err)
	}
	return first, nil
}

func (s *Store) refreshKey(tok string) string {
	return s.prefix + refreshKeyPrefix + tok
}

// Access tokens are long, so revoked entries are keyed by their digest.
func (s *Store) revokedKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return s.prefix + revokedKeyPrefix + hex.EncodeToString(sum[:])
}

func decodeRecord(data []byte, err error) (*refresh.Record, error) {
	if errors.Is(err, redis.Nil) {
		return nil, refresh.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh record: %w", err)
	}
	rec := &refresh.Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("unmarshal refresh record: %w", err)
	}
	return rec, nil
}
