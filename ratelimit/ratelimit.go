// Package ratelimit implements a fixed trailing-window request limiter keyed
// by a caller-supplied identity. Identities are not verified; the limiter is
// a spam brake, not an authentication boundary.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store keeps per-identity request history. Append prunes entries older than
// the window, records now unconditionally (a request that ends up rejected
// still extends the window), and returns how many requests were inside the
// window before this one. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, identity string, now time.Time, window time.Duration) (int, error)
}

// Limiter admits at most max requests per identity within a trailing window.
type Limiter struct {
	store  Store
	window time.Duration
	max    int
	log    *zap.SugaredLogger
	now    func() time.Time
}

// New creates a Limiter over the given store.
func New(store Store, window time.Duration, max int, log *zap.SugaredLogger) *Limiter {
	return &Limiter{store: store, window: window, max: max, log: log, now: time.Now}
}

// Allow reports whether the identity may proceed. The request is recorded
// either way. Store failures fail open: a broken limiter backend must not
// take the mutation endpoints down with it.
func (l *Limiter) Allow(ctx context.Context, identity string) bool {
	prior, err := l.store.Append(ctx, identity, l.now(), l.window)
	if err != nil {
		if l.log != nil {
			l.log.Warnf("rate limit store failed, admitting %s: %v", identity, err)
		}
		return true
	}
	return prior < l.max
}

// MemoryStore is the single-process Store: per-identity timestamp slices
// behind a mutex. Idle identities are never evicted; the map grows with the
// number of distinct callers seen, which is acceptable for a low-traffic
// single-instance deployment.
type MemoryStore struct {
	mu      sync.Mutex
	history map[string][]time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{history: make(map[string][]time.Time)}
}

func (s *MemoryStore) Append(ctx context.Context, identity string, now time.Time, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	recent := s.history[identity][:0]
	for _, ts := range s.history[identity] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	prior := len(recent)
	s.history[identity] = append(recent, now)
	return prior, nil
}
