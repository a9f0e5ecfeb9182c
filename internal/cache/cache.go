package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"call-rewind-go/internal/logger"
	"call-rewind-go/internal/types"
)

// Cache keeps built year reviews in redis so a page reload does not re-walk
// up to 6000 history records. A nil *Cache is a valid no-op, which is how
// the service runs when no redis address is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func key(userID string, year int) string {
	return fmt.Sprintf("review:%s:%d", userID, year)
}

// Get returns the cached review for one user and year, if present. Redis
// failures are logged and treated as a miss.
func (c *Cache) Get(ctx context.Context, userID string, year int) (types.YearReview, bool) {
	if c == nil {
		return types.YearReview{}, false
	}
	data, err := c.client.Get(ctx, key(userID, year)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.New().WithComponent("cache").WithError(err).Warn("review cache read failed")
		}
		return types.YearReview{}, false
	}
	var review types.YearReview
	if err := json.Unmarshal(data, &review); err != nil {
		logger.New().WithComponent("cache").WithError(err).Warn("review cache entry corrupt")
		return types.YearReview{}, false
	}
	return review, true
}

// Set stores a review under its user and year. Failures only cost the next
// caller a rebuild.
func (c *Cache) Set(ctx context.Context, userID string, year int, review types.YearReview) {
	if c == nil {
		return
	}
	data, err := json.Marshal(review)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(userID, year), data, c.ttl).Err(); err != nil {
		logger.New().WithComponent("cache").WithError(err).Warn("review cache write failed")
	}
}
