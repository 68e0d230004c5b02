package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T, config *Config) Cache {
	t.Helper()
	if config == nil {
		config = DefaultConfig()
	}
	config.Provider = "memory"
	c, err := NewCache(config, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, nil)

	require.NoError(t, c.Set(ctx, "greeting", "hello", time.Minute))

	value, ok := c.Get(ctx, "greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", value)
	assert.True(t, c.Exists(ctx, "greeting"))

	require.NoError(t, c.Delete(ctx, "greeting"))
	_, ok = c.Get(ctx, "greeting")
	assert.False(t, ok)
}

func TestMemoryCache_ExpiredEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, nil)

	require.NoError(t, c.Set(ctx, "short", 1, time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "short")
	assert.False(t, ok)
	assert.False(t, c.Exists(ctx, "short"))
}

func TestMemoryCache_ZeroTTLUsesDefault(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, &Config{TTL: time.Hour, MaxKeys: 10, CleanupInterval: time.Minute})

	require.NoError(t, c.Set(ctx, "durable", 42, 0))
	_, ok := c.Get(ctx, "durable")
	assert.True(t, ok)
}

func TestMemoryCache_EvictsWhenFull(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, &Config{TTL: time.Hour, MaxKeys: 2, CleanupInterval: time.Minute})

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "b", 2, time.Hour))
	require.NoError(t, c.Set(ctx, "c", 3, time.Hour))

	// "a" had the nearest expiry and should have been evicted
	assert.False(t, c.Exists(ctx, "a"))
	assert.True(t, c.Exists(ctx, "b"))
	assert.True(t, c.Exists(ctx, "c"))
}

func TestNewCache_UnknownProvider(t *testing.T) {
	_, err := NewCache(&Config{Provider: "memcached"}, zap.NewNop())
	assert.Error(t, err)
}
