package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ProcessedEventCache implements ports.ProcessedEventCache using Redis.
// It is a best-effort fast path: a cache miss falls through to the ledger's
// unique idempotency constraint, which stays authoritative.
type ProcessedEventCache struct {
	client *goredis.Client
	prefix string
}

// NewProcessedEventCache creates a Redis-backed processed-payment cache.
func NewProcessedEventCache(client *goredis.Client) *ProcessedEventCache {
	return &ProcessedEventCache{
		client: client,
		prefix: "webhook:processed:",
	}
}

// Seen reports whether the payment id has already been processed.
func (c *ProcessedEventCache) Seen(ctx context.Context, paymentID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+paymentID).Result()
	if err != nil {
		return false, fmt.Errorf("redis processed-event check: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records the payment id with a TTL.
func (c *ProcessedEventCache) MarkSeen(ctx context.Context, paymentID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+paymentID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis processed-event mark: %w", err)
	}
	return nil
}
