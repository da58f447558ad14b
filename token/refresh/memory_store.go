package refresh

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*InMemoryStore)(nil)

type storedRecord struct {
	rec       Record
	expiresAt time.Time
}

// InMemoryStore is a Store for single-instance deployments and tests.
type InMemoryStore struct {
	tokens  map[string]storedRecord
	lock    sync.Mutex
	nowFunc func() time.Time
}

func NewInMemoryStore(now func() time.Time) *InMemoryStore {
	if now == nil {
		now = time.Now
	}
	return &InMemoryStore{
		tokens:  make(map[string]storedRecord),
		nowFunc: now,
	}
}

func (s *InMemoryStore) Set(_ context.Context, token string, rec *Record, ttl time.Duration) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.tokens[token] = storedRecord{rec: *rec, expiresAt: s.nowFunc().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, token string) (*Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.live(token)
}

func (s *InMemoryStore) Take(_ context.Context, token string) (*Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	rec, err := s.live(token)
	if err != nil {
		return nil, err
	}
	delete(s.tokens, token)
	return rec, nil
}

func (s *InMemoryStore) Delete(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.tokens, token)
	return nil
}

// Cleanup drops expired records and returns how many were removed.
func (s *InMemoryStore) Cleanup() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	now := s.nowFunc()
	removed := 0
	for token, sr := range s.tokens {
		if !now.Before(sr.expiresAt) {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed
}

// live must be called with the lock held.
func (s *InMemoryStore) live(token string) (*Record, error) {
	sr, ok := s.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.nowFunc().Before(sr.expiresAt) {
		delete(s.tokens, token)
		return nil, ErrNotFound
	}
	rec := sr.rec
	return &rec, nil
}
