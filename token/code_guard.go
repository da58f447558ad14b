package token

import (
	"context"
	"time"
)

// UsedCodeGuard remembers authorization code ids so each code is redeemed once.
type UsedCodeGuard interface {
	// MarkUsed returns true the first time id is seen within ttl.
	MarkUsed(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

var _ UsedCodeGuard = (*InMemoryUsedCodeGuard)(nil)

type InMemoryUsedCodeGuard struct {
	set *expiringSet
}

func NewInMemoryUsedCodeGuard(now func() time.Time) *InMemoryUsedCodeGuard {
	return &InMemoryUsedCodeGuard{set: newExpiringSet(now)}
}

func (g *InMemoryUsedCodeGuard) MarkUsed(_ context.Context, id string, ttl time.Duration) (bool, error) {
	return g.set.add(id, ttl), nil
}

func (g *InMemoryUsedCodeGuard) Cleanup() int {
	return g.set.cleanup()
}
