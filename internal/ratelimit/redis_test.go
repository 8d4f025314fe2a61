package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestRedisLimiterAllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	limiter := NewRedisLimiter(newTestRedis(t), testLogger())

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, "client-a", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, "client-a", 3, time.Minute)
	require.True(t, errors.Is(err, ErrLimitExceeded))
	require.False(t, result.Allowed)
}

func TestRedisLimiterKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter := NewRedisLimiter(newTestRedis(t), testLogger())

	_, err := limiter.Check(ctx, "client-a", 1, time.Minute)
	require.NoError(t, err)

	_, err = limiter.Check(ctx, "client-a", 1, time.Minute)
	require.True(t, errors.Is(err, ErrLimitExceeded))

	result, err := limiter.Check(ctx, "client-b", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, result.Allowed)
}

func TestRedisLimiterWithoutClient(t *testing.T) {
	limiter := NewRedisLimiter(nil, testLogger())

	result, err := limiter.Check(context.Background(), "client-a", 1, time.Minute)
	require.Error(t, err)
	require.Nil(t, result)
}
