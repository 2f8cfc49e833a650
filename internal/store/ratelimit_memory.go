package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore is an in-memory sliding-window implementation of ratelimit.Store.
type RateLimitMemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Record adds a hit for key and returns the number of hits within window, this one included.
func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	hits := s.hits[key]

	// hits are appended in order, so everything before the first recent one is stale
	first := len(hits)
	for i, ts := range hits {
		if ts.After(cutoff) {
			first = i

			break
		}
	}

	hits = append(hits[first:], now)
	s.hits[key] = hits

	return int64(len(hits)), nil
}
