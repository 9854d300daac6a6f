package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

const keyPrefix = "revenue"

// HeroGhostKey is the cache key of a hero/ghost listing.
// Format: revenue:{date}:heroghost:{business}:{vertical}
func HeroGhostKey(snapshotDate time.Time, scope models.Scope) string {
	return fmt.Sprintf("%s:%s:heroghost:%s:%s", keyPrefix, snapshotDate.Format("2006-01-02"), scope.BusinessID, scope.VerticalID)
}

// StorePredictionsKey is the cache key of a store's prediction listing.
func StorePredictionsKey(snapshotDate time.Time, storeID string) string {
	return fmt.Sprintf("%s:%s:store:%s", keyPrefix, snapshotDate.Format("2006-01-02"), storeID)
}

// DealsKey is the cache key of an active deal listing.
func DealsKey(snapshotDate time.Time, scope models.Scope) string {
	return fmt.Sprintf("%s:%s:deals:%s:%s:%s", keyPrefix, snapshotDate.Format("2006-01-02"), scope.BusinessID, scope.VerticalID, scope.ProductID)
}

// SnapshotCache caches dashboard reads of a snapshot date. Entries live until
// the end of the snapshot day, optionally capped by maxTTL.
type SnapshotCache struct {
	redis  *RedisClient
	maxTTL time.Duration
	now    func() time.Time
}

// NewSnapshotCache creates a new SnapshotCache.
func NewSnapshotCache(redis *RedisClient, maxTTL time.Duration) *SnapshotCache {
	return &SnapshotCache{
		redis:  redis,
		maxTTL: maxTTL,
		now:    time.Now,
	}
}

// calculateTTL returns the time left until the end of the snapshot day.
func (c *SnapshotCache) calculateTTL(snapshotDate time.Time) time.Duration {
	eod := snapshotDate.AddDate(0, 0, 1)
	ttl := eod.Sub(c.now())
	if c.maxTTL > 0 && ttl > c.maxTTL {
		ttl = c.maxTTL
	}
	if ttl <= 0 {
		// the day already ended; keep the entry briefly rather than forever
		ttl = time.Minute
	}
	return ttl
}

// Load decodes the value under key into dest. It reports false on a miss.
func (c *SnapshotCache) Load(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.redis.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

// Store encodes value under key until the end of snapshotDate.
func (c *SnapshotCache) Store(ctx context.Context, key string, value interface{}, snapshotDate time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cached %s: %w", key, err)
	}
	return c.redis.Set(ctx, key, string(data), c.calculateTTL(snapshotDate))
}

// InvalidateDate drops every cached read of snapshotDate.
func (c *SnapshotCache) InvalidateDate(ctx context.Context, snapshotDate time.Time) error {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, snapshotDate.Format("2006-01-02"))
	_, err := c.redis.DeleteByPattern(ctx, pattern)
	return err
}

// NopSnapshotCache is used when Redis is not configured. Every read misses.
type NopSnapshotCache struct{}

func (NopSnapshotCache) Load(context.Context, string, interface{}) (bool, error) { return false, nil }

func (NopSnapshotCache) Store(context.Context, string, interface{}, time.Time) error { return nil }

func (NopSnapshotCache) InvalidateDate(context.Context, time.Time) error { return nil }
