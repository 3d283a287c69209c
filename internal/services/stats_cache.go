package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsCachePrefix = "stats:v1:"

// StatsCache stores rendered dashboard statistics for a short time.
type StatsCache interface {
	Get(ctx context.Context, key string) (*DashboardStatistics, bool, error)
	Set(ctx context.Context, key string, value *DashboardStatistics) error
	Invalidate(ctx context.Context) error
}

// RedisStatsCache keeps entries under stats:v1:* with a fixed TTL.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

// StatsCacheKey derives the cache key for one combination of query options.
func StatsCacheKey(weeks, windowDays int) string {
	return fmt.Sprintf("w%d:d%d", weeks, windowDays)
}

func (c *RedisStatsCache) Get(ctx context.Context, key string) (*DashboardStatistics, bool, error) {
	raw, err := c.client.Get(ctx, statsCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out DashboardStatistics
	if err := json.Unmarshal(raw, &out); err != nil {
		// a stale layout is treated as a miss
		return nil, false, nil
	}
	return &out, true, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, key string, value *DashboardStatistics) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsCachePrefix+key, raw, c.ttl).Err()
}

// Invalidate drops every cached statistics entry.
func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, statsCachePrefix+"*", 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// NoopStatsCache never stores anything.
type NoopStatsCache struct{}

func (NoopStatsCache) Get(context.Context, string) (*DashboardStatistics, bool, error) {
	return nil, false, nil
}

func (NoopStatsCache) Set(context.Context, string, *DashboardStatistics) error { return nil }

func (NoopStatsCache) Invalidate(context.Context) error { return nil }
