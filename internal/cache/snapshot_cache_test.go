package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

var snapshotDay = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

func newTestCache(t *testing.T, maxTTL time.Duration) (*SnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewSnapshotCache(WrapRedisClient(client), maxTTL)
	c.now = func() time.Time { return snapshotDay.Add(18 * time.Hour) }
	return c, mr
}

type listing struct {
	Heroes []string `json:"heroes"`
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()
	key := HeroGhostKey(snapshotDay, models.Scope{BusinessID: "b1"})

	var got listing
	hit, err := c.Load(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Store(ctx, key, listing{Heroes: []string{"p1", "p2"}}, snapshotDay))

	hit, err = c.Load(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"p1", "p2"}, got.Heroes)

	// expires at the end of the snapshot day
	assert.Equal(t, 6*time.Hour, mr.TTL(key))
}

func TestSnapshotCacheTTLCap(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Minute)
	key := StorePredictionsKey(snapshotDay, "s1")

	require.NoError(t, c.Store(context.Background(), key, []int{1}, snapshotDay))
	assert.Equal(t, 30*time.Minute, mr.TTL(key))
}

func TestSnapshotCacheStaleDayGetsShortTTL(t *testing.T) {
	c, mr := newTestCache(t, 0)
	yesterday := snapshotDay.AddDate(0, 0, -1)
	key := StorePredictionsKey(yesterday, "s1")

	require.NoError(t, c.Store(context.Background(), key, []int{1}, yesterday))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestSnapshotCacheInvalidateDate(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()
	other := snapshotDay.AddDate(0, 0, -1)

	require.NoError(t, c.Store(ctx, HeroGhostKey(snapshotDay, models.Scope{}), listing{}, snapshotDay))
	require.NoError(t, c.Store(ctx, StorePredictionsKey(snapshotDay, "s1"), []int{}, snapshotDay))
	require.NoError(t, c.Store(ctx, DealsKey(snapshotDay, models.Scope{ProductID: "p1"}), []int{}, snapshotDay))
	require.NoError(t, mr.Set(StorePredictionsKey(other, "s1"), "[]"))

	require.NoError(t, c.InvalidateDate(ctx, snapshotDay))

	assert.False(t, mr.Exists(HeroGhostKey(snapshotDay, models.Scope{})))
	assert.False(t, mr.Exists(StorePredictionsKey(snapshotDay, "s1")))
	assert.False(t, mr.Exists(DealsKey(snapshotDay, models.Scope{ProductID: "p1"})))
	assert.True(t, mr.Exists(StorePredictionsKey(other, "s1")))
}

func TestSnapshotCacheCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, 0)
	key := StorePredictionsKey(snapshotDay, "s1")
	require.NoError(t, mr.Set(key, "not-json"))

	var got []int
	hit, err := c.Load(context.Background(), key, &got)
	assert.False(t, hit)
	assert.Error(t, err)
}

func TestNopSnapshotCacheAlwaysMisses(t *testing.T) {
	var c NopSnapshotCache
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "k", 1, snapshotDay))
	hit, err := c.Load(ctx, "k", new(int))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.InvalidateDate(ctx, snapshotDay))
}
