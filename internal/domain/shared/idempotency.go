package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers delivery keys so a redelivered webhook can be
// acknowledged without repeating its side effects.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets a key so the next delivery is processed again.
	// Used when handling failed before any side effect was committed.
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// DefaultIdempotencyTTL is how long a processed key is remembered when no
// TTL is configured.
const DefaultIdempotencyTTL = 24 * time.Hour
