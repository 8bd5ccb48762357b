package affiliate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "affiliate:stats:"

// StatsCache is a Redis-backed cache for affiliate stats views. A nil cache
// or client is a pass-through.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache instantiates the cache helper.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(accountID int64) string {
	return fmt.Sprintf("%s%d", statsKeyPrefix, accountID)
}

// FetchStats loads the cached stats view or populates it using the loader.
func (c *StatsCache) FetchStats(ctx context.Context, accountID int64, loader func(context.Context) (*Stats, error)) (*Stats, error) {
	if loader == nil {
		return nil, errors.New("affiliate: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	key := statsKey(accountID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var stats Stats
		if err := json.Unmarshal(payload, &stats); err == nil {
			return &stats, nil
		}
		// Corrupt entry, fall through to reload.
	} else if err != redis.Nil {
		return nil, err
	}

	stats, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// Invalidate drops the cached view for the given accounts, typically after a
// signup or a commission posting changes their standing.
func (c *StatsCache) Invalidate(ctx context.Context, accountIDs ...int64) error {
	if c == nil || c.client == nil || len(accountIDs) == 0 {
		return nil
	}
	keys := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		keys[i] = statsKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}
