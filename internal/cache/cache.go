// Package cache provides a small caching layer with in-memory and Redis
// providers behind one interface.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ===============================
// CACHE INTERFACE
// ===============================

// Cache defines the caching interface
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	Health(ctx context.Context) error
	Close() error
}

// Config holds cache configuration
type Config struct {
	Provider        string        // "memory" or "redis"
	TTL             time.Duration // default TTL when callers pass 0
	MaxKeys         int           // memory provider key cap
	CleanupInterval time.Duration // memory provider janitor interval
	RedisURL        string
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:        "memory",
		TTL:             5 * time.Minute,
		MaxKeys:         10000,
		CleanupInterval: time.Minute,
	}
}

// NewCache creates a cache for the configured provider
func NewCache(config *Config, logger *zap.Logger) (Cache, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "", "memory":
		return newMemoryCache(config, logger), nil
	case "redis":
		return newRedisCache(config, logger)
	default:
		return nil, fmt.Errorf("unknown cache provider: %s", config.Provider)
	}
}

// ===============================
// MEMORY CACHE
// ===============================

type memoryEntry struct {
	value     interface{}
	expiresAt time.Time
}

func (e *memoryEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	config  *Config
	logger  *zap.Logger
	done    chan struct{}
}

func newMemoryCache(config *Config, logger *zap.Logger) *memoryCache {
	c := &memoryCache{
		entries: make(map[string]*memoryEntry),
		config:  config,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go c.janitor()
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || entry.expired() {
		return nil, false
	}
	return entry.value, true
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.config.TTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.config.MaxKeys {
		c.evictOldestLocked()
	}
	c.entries[key] = &memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) bool {
	_, ok := c.Get(ctx, key)
	return ok
}

func (c *memoryCache) Health(ctx context.Context) error {
	return nil
}

func (c *memoryCache) Close() error {
	close(c.done)
	return nil
}

// evictOldestLocked drops the entry closest to expiry. Called with the
// write lock held.
func (c *memoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestExpiry time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = entry.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *memoryCache) janitor() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if entry.expired() {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// ===============================
// REDIS CACHE
// ===============================

type redisCache struct {
	client *redis.Client
	config *Config
	logger *zap.Logger
}

func newRedisCache(config *Config, logger *zap.Logger) (*redisCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis cache connected", zap.String("addr", opts.Addr))
	return &redisCache{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// Get returns the JSON-decoded value. Values round-trip through JSON, so
// typed callers should treat a shape mismatch as a miss.
func (c *redisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Redis get failed", zap.Error(err), zap.String("key", key))
		}
		return nil, false
	}

	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		c.logger.Warn("Failed to decode cached value", zap.Error(err), zap.String("key", key))
		return nil, false
	}
	return value, true
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.config.TTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, key).Result()
	return err == nil && n > 0
}

func (c *redisCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
