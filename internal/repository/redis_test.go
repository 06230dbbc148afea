package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiter(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	limiter := NewRedisLimiter(client)
	ctx := context.Background()

	t.Run("AllowsUnderLimit", func(t *testing.T) {
		actorID := int64(1)
		limit := 2
		window := time.Second

		allowed, err := limiter.Allow(ctx, actorID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = limiter.Allow(ctx, actorID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = limiter.Allow(ctx, actorID, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = limiter.Allow(ctx, actorID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("ActorsAreIndependent", func(t *testing.T) {
		limit := 1
		window := time.Minute

		allowed, err := limiter.Allow(ctx, 100, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = limiter.Allow(ctx, 100, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		allowed, err = limiter.Allow(ctx, 101, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		nilLimiter := NewRedisLimiter(nil)
		_, err := nilLimiter.Allow(ctx, 1, 10, time.Minute)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("Close", func(t *testing.T) {
		assert.NoError(t, Close(client))
	})
}
