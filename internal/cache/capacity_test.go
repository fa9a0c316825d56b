package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propexpo/stall-booking-api/internal/config"
)

func startRedis(t *testing.T) *Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.Run("redis", "7-alpine", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	client := NewClient(&config.RedisConfig{Addr: "localhost:" + resource.GetPort("6379/tcp")})
	require.NoError(t, pool.Retry(func() error {
		return client.Ping(context.Background()).Err()
	}))

	return client
}

func TestCapacityCache(t *testing.T) {
	ctx := context.Background()
	c := NewCapacityCache(startRedis(t), time.Minute)

	_, ok, err := c.GetRemaining(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	generation, err := c.Generation(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, c.SetRemaining(ctx, 5, generation, 4))

	remaining, ok, err := c.GetRemaining(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, remaining)

	require.NoError(t, c.Invalidate(ctx, 5))

	_, ok, err = c.GetRemaining(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCapacityCache_StaleWriteDropped(t *testing.T) {
	ctx := context.Background()
	c := NewCapacityCache(startRedis(t), time.Minute)

	generation, err := c.Generation(ctx, 7)
	require.NoError(t, err)

	// a committed write invalidates while the figure is being computed
	require.NoError(t, c.Invalidate(ctx, 7))
	require.NoError(t, c.SetRemaining(ctx, 7, generation, 10))

	_, ok, err := c.GetRemaining(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	current, err := c.Generation(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, generation+1, current)

	require.NoError(t, c.SetRemaining(ctx, 7, current, 4))
	remaining, ok, err := c.GetRemaining(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, remaining)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "event:42:remaining", remainingKey(42))
	assert.Equal(t, "event:42:generation", generationKey(42))
}
