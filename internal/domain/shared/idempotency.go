package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which deliveries a consumer has already applied.
// Keys are opaque to the store; consumers build them as "consumer:eventID".
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It reports false when the key was
	// already claimed, in which case the delivery must be skipped.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget drops a claim so the next delivery of the event is applied again
	Forget(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig controls consumer deduplication.
// A zero TTL keeps claims until the store evicts them.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps claims for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
