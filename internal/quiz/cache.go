package quiz

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CountCache remembers the size of filtered question sets for a short time.
type CountCache interface {
	Get(ctx context.Context, key string) (int, bool, error)
	Set(ctx context.Context, key string, count int) error
	// Purge drops every cached count, used after archive changes.
	Purge(ctx context.Context) error
}

type memoryEntry struct {
	count   int
	expires time.Time
}

// MemoryCountCache is a per-process cache. Counts may be stale by up to the TTL.
type MemoryCountCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryCountCache(ttl time.Duration, now func() time.Time) *MemoryCountCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCountCache{ttl: ttl, now: now, entries: map[string]memoryEntry{}}
}

func (c *MemoryCountCache) Get(_ context.Context, key string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return 0, false, nil
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, key)
		return 0, false, nil
	}
	return entry.count, true, nil
}

func (c *MemoryCountCache) Set(_ context.Context, key string, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{count: count, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCountCache) Purge(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]memoryEntry{}
	return nil
}

const redisCountPrefix = "quiz:count:"

// RedisCountCache shares counts between instances.
type RedisCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCountCache(client *redis.Client, ttl time.Duration) *RedisCountCache {
	return &RedisCountCache{client: client, ttl: ttl}
}

func (c *RedisCountCache) Get(ctx context.Context, key string) (int, bool, error) {
	raw, err := c.client.Get(ctx, redisCountPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, nil
	}
	return count, true, nil
}

func (c *RedisCountCache) Set(ctx context.Context, key string, count int) error {
	return c.client.Set(ctx, redisCountPrefix+key, count, c.ttl).Err()
}

func (c *RedisCountCache) Purge(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisCountPrefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}
