package token

import (
	"sync"
	"time"
)

// expiringSet is a set of keys that each drop out after their own deadline.
type expiringSet struct {
	entries map[string]time.Time
	mu      sync.RWMutex
	nowFunc func() time.Time
}

func newExpiringSet(now func() time.Time) *expiringSet {
	if now == nil {
		now = time.Now
	}
	return &expiringSet{
		entries: make(map[string]time.Time),
		nowFunc: now,
	}
}

// add stores key until now+ttl, returning false when a live entry already exists.
func (s *expiringSet) add(key string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFunc()
	if exp, ok := s.entries[key]; ok && now.Before(exp) {
		return false
	}
	s.entries[key] = now.Add(ttl)
	return true
}

func (s *expiringSet) contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.entries[key]
	return ok && s.nowFunc().Before(exp)
}

func (s *expiringSet) cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFunc()
	removed := 0
	for key, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
