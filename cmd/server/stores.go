package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-auth-exchange/auth"
	"github.com/jrsteele09/go-auth-exchange/federated"
	"github.com/jrsteele09/go-auth-exchange/internal/config"
	"github.com/jrsteele09/go-auth-exchange/internal/scheduler"
	"github.com/jrsteele09/go-auth-exchange/token"
	"github.com/jrsteele09/go-auth-exchange/token/redisstore"
	"github.com/jrsteele09/go-auth-exchange/token/refresh"
	"github.com/rs/zerolog/log"
)

// tokenStores is the shared state behind refresh rotation, revocation and
// single-use codes.
type tokenStores struct {
	name      string
	refresh   refresh.Store
	revoked   token.RevokedTokenStore
	usedCodes token.UsedCodeGuard
	ping      func(ctx context.Context) error
	close     func()
}

// newTokenStores uses Redis when REDIS_HOST is set. Otherwise every store is
// in memory and swept by the scheduler.
func newTokenStores(ctx context.Context, c config.Config, sched *scheduler.Scheduler) (*tokenStores, error) {
	if c.UseRedis() {
		client := redisstore.NewClient(c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDatabase())
		store := redisstore.New(client, c.GetRedisKeyPrefix())
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", c.GetRedisAddr(), err)
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("using redis token stores")
		return &tokenStores{
			name:      "redis",
			refresh:   store,
			revoked:   store,
			usedCodes: store,
			ping:      store.Ping,
			close: func() {
				if err := client.Close(); err != nil {
					log.Warn().Err(err).Msg("redis close")
				}
			},
		}, nil
	}

	refreshStore := refresh.NewInMemoryStore(nil)
	revoked := token.NewInMemoryRevokedTokenStore(nil)
	usedCodes := token.NewInMemoryUsedCodeGuard(nil)

	interval := c.GetRevokedSweepInterval()
	sweeps := map[string]func() int{
		"sweep-refresh-tokens": refreshStore.Cleanup,
		"sweep-revoked-tokens": revoked.Cleanup,
		"sweep-used-codes":     usedCodes.Cleanup,
	}
	for name, cleanup := range sweeps {
		if err := sched.AddSweep(name, interval, func(context.Context) {
			if n := cleanup(); n > 0 {
				log.Debug().Str("job", name).Int("removed", n).Msg("expired entries removed")
			}
		}); err != nil {
			return nil, err
		}
	}

	log.Warn().Msg("REDIS_HOST not set, token stores are in memory and not shared between instances")
	return &tokenStores{
		name:      "memory",
		refresh:   refreshStore,
		revoked:   revoked,
		usedCodes: usedCodes,
		ping:      func(context.Context) error { return nil },
		close:     func() {},
	}, nil
}

func newIdentityProviders(ctx context.Context, c config.Config) ([]auth.IdentityProvider, error) {
	var providers []auth.IdentityProvider

	if google := c.GetGoogle(); google.Enabled() {
		p, err := federated.NewGoogle(ctx, google)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if keycloak := c.GetKeycloak(); keycloak.Enabled() {
		p, err := federated.NewKeycloak(ctx, keycloak)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	for _, p := range providers {
		log.Info().Str("provider", p.Name()).Msg("federated login enabled")
	}
	return providers, nil
}
