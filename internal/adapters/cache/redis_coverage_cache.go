package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"field-visit-service/internal/domain"
)

// RedisCoverageCache is a TTL cache for on-demand coverage results, keyed by
// visit id. Coverage stats are ephemeral by contract; the cache only spares
// the geometry work on repeated lookups, so every failure mode is a miss.
type RedisCoverageCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCoverageCache(client *redis.Client, ttl time.Duration) *RedisCoverageCache {
	return &RedisCoverageCache{Client: client, TTL: ttl}
}

func coverageKey(visitID string) string { return "coverage:" + visitID }

// Return the cached stats for a visit, or (nil, nil) on a miss.
func (c *RedisCoverageCache) Get(ctx context.Context, visitID string) (*domain.CoverageStats, error) {
	if c.Client == nil {
		return nil, errors.New("coverage cache: client is nil")
	}

	payload, err := c.Client.Get(ctx, coverageKey(visitID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get coverage cache visit=%s: %w", visitID, err)
	}

	var stats domain.CoverageStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		// A corrupt entry is a miss; the next Put overwrites it.
		return nil, nil
	}
	return &stats, nil
}

// Store stats for a visit until the TTL expires them.
func (c *RedisCoverageCache) Put(ctx context.Context, visitID string, stats domain.CoverageStats) error {
	if c.Client == nil {
		return errors.New("coverage cache: client is nil")
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("put coverage cache visit=%s: marshal: %w", visitID, err)
	}

	if err := c.Client.Set(ctx, coverageKey(visitID), payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("put coverage cache visit=%s: %w", visitID, err)
	}
	return nil
}
