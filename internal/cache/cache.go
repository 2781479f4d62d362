// Package cache implements the Redis-backed fingerprint cache used to
// suppress redundant sync writes. The cache is a performance optimization,
// never a correctness mechanism: every failure path reads as "not synced".
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SyncCache maps (product id, schema version) to the fingerprint of the last
// successfully synchronized content. A nil client disables caching entirely.
type SyncCache struct {
	client  *redis.Client
	version string
	log     zerolog.Logger
}

// New constructs a SyncCache. client may be nil when no cache backend is
// configured; all lookups then report "not synced".
func New(client *redis.Client, version string, log zerolog.Logger) *SyncCache {
	if version == "" {
		version = "v1"
	}
	return &SyncCache{client: client, version: version, log: log}
}

func (c *SyncCache) key(productID string) string {
	return fmt.Sprintf("sync:product:%s:%s", productID, c.version)
}

// IsSynced reports whether the stored fingerprint for productID equals fp and
// has not expired. Backend errors degrade to false so synchronization is
// never silently skipped.
func (c *SyncCache) IsSynced(ctx context.Context, productID, fp string) bool {
	if c.client == nil {
		return false
	}
	cached, err := c.client.Get(ctx, c.key(productID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("product_id", productID).Msg("sync cache check failed")
		}
		return false
	}
	return cached == fp
}

// MarkSynced records fp for productID with the given TTL. Best-effort:
// failures are logged and swallowed.
func (c *SyncCache) MarkSynced(ctx context.Context, productID, fp string, ttl time.Duration) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, c.key(productID), fp, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("sync cache save failed")
	}
}

// Invalidate drops the cached fingerprint for productID, forcing the next
// apply to resync. Best-effort.
func (c *SyncCache) Invalidate(ctx context.Context, productID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(productID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("sync cache invalidate failed")
	}
}

// Connected reports whether the cache backend answers a ping.
func (c *SyncCache) Connected(ctx context.Context) bool {
	if c.client == nil {
		return false
	}
	return c.client.Ping(ctx).Err() == nil
}
