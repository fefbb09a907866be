package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.clock = func() time.Time { return now }

	token, ok, err := l.TryLock(ctx, "sweep:c1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, _ = l.TryLock(ctx, "sweep:c1", time.Minute)
	assert.False(t, ok, "held lock is not granted twice")

	_, ok, _ = l.TryLock(ctx, "sweep:c2", time.Minute)
	assert.True(t, ok, "locks are per key")

	now = now.Add(2 * time.Minute)
	token, ok, _ = l.TryLock(ctx, "sweep:c1", time.Minute)
	assert.True(t, ok, "expired lock is granted again")

	require.NoError(t, l.Unlock(ctx, "sweep:c1", token))
	_, ok, _ = l.TryLock(ctx, "sweep:c1", time.Minute)
	assert.True(t, ok)
}

func TestLocalLocker_StaleHolderCannotReleaseNewLease(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.clock = func() time.Time { return now }

	first, ok, err := l.TryLock(ctx, "sweep:c1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(90 * time.Second)
	second, ok, err := l.TryLock(ctx, "sweep:c1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, first, second)

	require.NoError(t, l.Unlock(ctx, "sweep:c1", first))
	_, ok, _ = l.TryLock(ctx, "sweep:c1", time.Minute)
	assert.False(t, ok, "the expired holder's unlock must not free the current lease")

	require.NoError(t, l.Unlock(ctx, "sweep:c1", second))
	_, ok, _ = l.TryLock(ctx, "sweep:c1", time.Minute)
	assert.True(t, ok)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
