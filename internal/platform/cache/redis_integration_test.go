//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *RedisLocker {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client, err := NewRedisClient(ctx, "redis://"+endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocker(client, "test:lock:")
}

func TestRedisLocker_UnlockRequiresOwnToken(t *testing.T) {
	ctx := context.Background()
	l := startRedis(t)

	first, ok, err := l.TryLock(ctx, "sweep:c1", 200*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "sweep:c1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(400 * time.Millisecond)
	second, ok, err := l.TryLock(ctx, "sweep:c1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "expired lock is granted again")

	require.NoError(t, l.Unlock(ctx, "sweep:c1", first))
	_, ok, err = l.TryLock(ctx, "sweep:c1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "the expired holder's unlock must not free the current lease")

	require.NoError(t, l.Unlock(ctx, "sweep:c1", second))
	_, ok, err = l.TryLock(ctx, "sweep:c1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
