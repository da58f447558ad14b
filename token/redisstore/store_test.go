package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-auth-exchange/token/redisstore"
	"github.com/jrsteele09/go-auth-exchange/token/refresh"
	"github.com/stretchr/testify/require"
)

const prefix = "auth:"

func setupStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisstore.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.New(client, prefix), mr
}

func TestStore_Ping(t *testing.T) {
	s, _ := setupStore(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestStore_RefreshRecords(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t)

	rec := &refresh.Record{ClientID: "c1", UserID: "u1", Username: "jdoe", AccessToken: "at", ExternalAuthToken: "ext"}
	require.NoError(t, s.Set(ctx, "tok", rec, time.Hour))
	require.True(t, mr.Exists(prefix+"refresh:tok"))
	require.Equal(t, time.Hour, mr.TTL(prefix+"refresh:tok"))

	got, err := s.Get(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, rec, got)

	got, err = s.Take(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, rec, got)

	_, err = s.Take(ctx, "tok")
	require.ErrorIs(t, err, refresh.ErrNotFound)
	_, err = s.Get(ctx, "tok")
	require.ErrorIs(t, err, refresh.ErrNotFound)
}

func TestStore_RefreshExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t)

	require.NoError(t, s.Set(ctx, "tok", &refresh.Record{UserID: "u1"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "tok")
	require.ErrorIs(t, err, refresh.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	require.NoError(t, s.Set(ctx, "tok", &refresh.Record{UserID: "u1"}, time.Minute))
	require.NoError(t, s.Delete(ctx, "tok"))
	require.NoError(t, s.Delete(ctx, "tok"))

	_, err := s.Get(ctx, "tok")
	require.ErrorIs(t, err, refresh.ErrNotFound)
}

func TestStore_Revocation(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t)

	revoked, err := s.IsRevoked(ctx, "access-token")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "access-token", time.Minute))
	revoked, err = s.IsRevoked(ctx, "access-token")
	require.NoError(t, err)
	require.True(t, revoked)

	for _, key := range mr.Keys() {
		require.NotContains(t, key, "access-token", "raw token must not appear in keys")
	}

	mr.FastForward(2 * time.Minute)
	revoked, err = s.IsRevoked(ctx, "access-token")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestStore_MarkUsed(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t)

	first, err := s.MarkUsed(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	require.True(t, first)

	first, err = s.MarkUsed(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	require.False(t, first)

	mr.FastForward(2 * time.Minute)
	first, err = s.MarkUsed(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	require.True(t, first)
}

func TestStore_ConnectionError(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t)
	mr.Close()

	_, err := s.Get(ctx, "tok")
	require.Error(t, err)
	require.NotErrorIs(t, err, refresh.ErrNotFound)
	require.Error(t, s.Ping(ctx))
}
