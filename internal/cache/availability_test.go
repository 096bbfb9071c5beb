package cache_test

import (
	"context"
	"testing"
	"time"

	"ms-booking/internal/cache"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNilClientBehavesAsMiss(t *testing.T) {
	c := cache.NewAvailabilityCache(nil, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, 301)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Set(ctx, 301, 10))
	assert.NoError(t, c.Invalidate(ctx, 301))
}

func TestAvailabilityCacheWithRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	defer client.Close()

	c := cache.NewAvailabilityCache(client, time.Minute)

	// Cold cache misses.
	_, ok, err := c.Get(ctx, 301)
	require.NoError(t, err)
	assert.False(t, ok, "Expected a miss on a cold cache")

	// Set then hit.
	require.NoError(t, c.Set(ctx, 301, 150))
	got, ok, err := c.Get(ctx, 301)
	require.NoError(t, err)
	require.True(t, ok, "Expected a hit after Set")
	assert.Equal(t, 150, got)

	// Invalidation drops the snapshot, so the next read is a miss again.
	require.NoError(t, c.Invalidate(ctx, 301))
	_, ok, err = c.Get(ctx, 301)
	require.NoError(t, err)
	assert.False(t, ok, "Expected a miss after Invalidate")

	// Keys are per ticket.
	require.NoError(t, c.Set(ctx, 301, 150))
	require.NoError(t, c.Set(ctx, 302, 20))
	require.NoError(t, c.Invalidate(ctx, 301))
	got, ok, err = c.Get(ctx, 302)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20, got)
}

func TestAvailabilityCacheTTL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	defer client.Close()

	c := cache.NewAvailabilityCache(client, time.Second)
	require.NoError(t, c.Set(ctx, 301, 150))

	time.Sleep(1500 * time.Millisecond)

	_, ok, err := c.Get(ctx, 301)
	require.NoError(t, err)
	assert.False(t, ok, "Expected the snapshot to expire")
}
