package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-rewind-go/internal/types"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Hour), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	review := types.YearReview{Year: 2025, HasData: true, Totals: types.Totals{All: 7}}

	_, ok := c.Get(ctx, "webuser-1", 2025)
	assert.False(t, ok)

	c.Set(ctx, "webuser-1", 2025, review)

	got, ok := c.Get(ctx, "webuser-1", 2025)
	require.True(t, ok)
	assert.Equal(t, review, got)

	// different user and year keys miss
	_, ok = c.Get(ctx, "webuser-2", 2025)
	assert.False(t, ok)
	_, ok = c.Get(ctx, "webuser-1", 2024)
	assert.False(t, ok)
}

func TestCacheExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "webuser-1", 2025, types.YearReview{Year: 2025})
	mr.FastForward(2 * time.Hour)

	_, ok := c.Get(ctx, "webuser-1", 2025)
	assert.False(t, ok)
}

func TestNilCacheIsNoOp(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.Set(ctx, "webuser-1", 2025, types.YearReview{Year: 2025})
	_, ok := c.Get(ctx, "webuser-1", 2025)
	assert.False(t, ok)

	assert.Nil(t, New(nil, time.Hour))
}
