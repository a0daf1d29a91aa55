// Package cache holds the delivery deduplication stores.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/storesync/backend/internal/domain/shared"
)

// DefaultCleanupInterval is how often expired keys are swept.
const DefaultCleanupInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps delivery keys in process memory. It does
// not share state between replicas.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	expiry    map[string]time.Time
	now       func() time.Time
	interval  time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// InMemoryOption configures an InMemoryIdempotencyStore.
type InMemoryOption func(*InMemoryIdempotencyStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemoryIdempotencyStore) {
		s.now = now
	}
}

// WithCleanupInterval overrides DefaultCleanupInterval.
func WithCleanupInterval(d time.Duration) InMemoryOption {
	return func(s *InMemoryIdempotencyStore) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewInMemoryIdempotencyStore creates the store and starts its sweeper.
func NewInMemoryIdempotencyStore(opts ...InMemoryOption) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expiry:   make(map[string]time.Time),
		now:      time.Now,
		interval: DefaultCleanupInterval,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// MarkProcessed records key until ttl elapses. It returns false when the key
// is already present and unexpired.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.expiry[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expiry[key] = now.Add(ttl)
	return true, nil
}

// Release forgets key.
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expiry, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, exp := range s.expiry {
		if !now.Before(exp) {
			delete(s.expiry, key)
		}
	}
}

// Size returns the number of tracked keys, expired or not.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expiry)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
