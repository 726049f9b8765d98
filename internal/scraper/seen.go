package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenTTL = 14 * 24 * time.Hour

// SeenCache remembers which portal job ids earlier scrape cycles already
// delivered, so repeated cycles do not re-upsert and re-log the same
// listings. Best effort: a cache miss or an unreachable redis only costs a
// duplicate upsert, which the store absorbs anyway.
type SeenCache struct {
	rdb *redis.Client
}

// NewSeenCache parses redisURL and verifies connectivity.
func NewSeenCache(ctx context.Context, redisURL string) (*SeenCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &SeenCache{rdb: client}, nil
}

// Close releases the redis connection.
func (c *SeenCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// MarkSeen records the id and reports whether it was already known. A nil
// cache never considers anything seen.
func (c *SeenCache) MarkSeen(ctx context.Context, portal, portalJobID string) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, nil
	}

	key := fmt.Sprintf("careercopilot:seen:%s:%s", portal, portalJobID)
	created, err := c.rdb.SetNX(ctx, key, 1, seenTTL).Result()
	if err != nil {
		return false, err
	}

	return !created, nil
}
