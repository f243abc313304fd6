package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores serialized search responses keyed by canonical filter state.
// The canonical URL encoding makes equal states share entries.
type Cache interface {
	Get(ctx context.Context, key string, out any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

type localEntry struct {
	expires time.Time
	data    []byte
}

// RedisCache is a Redis-backed cache with a short-lived in-process layer in
// front of it.
type RedisCache struct {
	client *redis.Client
	mu     sync.Mutex
	local  map[string]localEntry
}

const localTTL = time.Minute

func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisCache{client: client, local: map[string]localEntry{}}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, out any) bool {
	c.mu.Lock()
	entry, found := c.local[key]
	if found && entry.expires.After(time.Now()) {
		c.mu.Unlock()
		return json.Unmarshal(entry.data, out) == nil
	}
	if found {
		delete(c.local, key)
	}
	c.mu.Unlock()

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	c.mu.Lock()
	c.local[key] = localEntry{expires: time.Now().Add(localTTL), data: data}
	c.mu.Unlock()
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	localExpiry := localTTL
	if ttl < localExpiry {
		localExpiry = ttl
	}
	c.mu.Lock()
	c.local[key] = localEntry{expires: time.Now().Add(localExpiry), data: data}
	c.mu.Unlock()
	return c.client.Set(ctx, key, data, ttl).Err()
}

// DeletePrefix drops every entry whose key starts with prefix, local and
// remote. Used when a price-lowered event invalidates cached search pages.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	for key := range c.local {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.local, key)
		}
	}
	c.mu.Unlock()

	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoOpCache disables caching when Redis is not configured.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string, out any) bool {
	return false
}

func (c *NoOpCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) DeletePrefix(ctx context.Context, prefix string) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
