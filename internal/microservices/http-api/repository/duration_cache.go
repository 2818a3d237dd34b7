package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// DurationCache stores per-episode minutes keyed by media id. A cached 0
// records that the media is known to have no duration, so the lookup is not
// repeated until the entry expires.
type DurationCache interface {
	// GetMany returns the cached durations and the ids that missed.
	GetMany(ctx context.Context, ids []string) (map[string]float64, []string, error)
	SetMany(ctx context.Context, durations map[string]float64) error
	Invalidate(ctx context.Context, id string) error
}

func durationKey(id string) string {
	return "media:duration:" + id
}

// RedisDurationCache is the shared cache used when REDIS_URL is set.
type RedisDurationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDurationCache parses redisURL and verifies the connection.
func NewRedisDurationCache(redisURL, password string, ttl time.Duration) (*RedisDurationCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDurationCache{client: rdb, ttl: ttl}, nil
}

// NewRedisDurationCacheFromClient wraps an existing client.
func NewRedisDurationCacheFromClient(client *redis.Client, ttl time.Duration) *RedisDurationCache {
	return &RedisDurationCache{client: client, ttl: ttl}
}

func (c *RedisDurationCache) GetMany(ctx context.Context, ids []string) (map[string]float64, []string, error) {
	hits := make(map[string]float64, len(ids))
	if c == nil || c.client == nil || len(ids) == 0 {
		// No-op for testing/mock mode
		return hits, ids, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = durationKey(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return hits, ids, fmt.Errorf("redis mget: %w", err)
	}

	var misses []string
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		minutes, err := strconv.ParseFloat(s, 64)
		if err != nil {
			misses = append(misses, ids[i])
			continue
		}
		hits[ids[i]] = minutes
	}
	return hits, misses, nil
}

func (c *RedisDurationCache) SetMany(ctx context.Context, durations map[string]float64) error {
	if c == nil || c.client == nil || len(durations) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, minutes := range durations {
			pipe.Set(ctx, durationKey(id), strconv.FormatFloat(minutes, 'f', -1, 64), c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

func (c *RedisDurationCache) Invalidate(ctx context.Context, id string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, durationKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *RedisDurationCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// MemoryDurationCache keeps durations in process. It serves single-instance
// deployments and tests.
type MemoryDurationCache struct {
	store *cache.Cache
}

func NewMemoryDurationCache(ttl time.Duration) *MemoryDurationCache {
	return &MemoryDurationCache{store: cache.New(ttl, 2*ttl)}
}

func (c *MemoryDurationCache) GetMany(_ context.Context, ids []string) (map[string]float64, []string, error) {
	hits := make(map[string]float64, len(ids))
	var misses []string
	for _, id := range ids {
		if v, ok := c.store.Get(durationKey(id)); ok {
			hits[id] = v.(float64)
			continue
		}
		misses = append(misses, id)
	}
	return hits, misses, nil
}

func (c *MemoryDurationCache) SetMany(_ context.Context, durations map[string]float64) error {
	for id, minutes := range durations {
		c.store.SetDefault(durationKey(id), minutes)
	}
	return nil
}

func (c *MemoryDurationCache) Invalidate(_ context.Context, id string) error {
	c.store.Delete(durationKey(id))
	return nil
}
