package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryLimiterAllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(testLogger())

	for i := 0; i < 5; i++ {
		result, err := limiter.Check(ctx, "client-a", 5, time.Minute)
		require.NoError(t, err)
		require.True(t, result.Allowed)
		require.Equal(t, 4-i, result.Remaining)
	}

	result, err := limiter.Check(ctx, "client-a", 5, time.Minute)
	require.True(t, errors.Is(err, ErrLimitExceeded))
	require.False(t, result.Allowed)
	require.Equal(t, 0, result.Remaining)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(testLogger())

	_, err := limiter.Check(ctx, "client-a", 1, time.Minute)
	require.NoError(t, err)

	_, err = limiter.Check(ctx, "client-a", 1, time.Minute)
	require.True(t, errors.Is(err, ErrLimitExceeded))

	result, err := limiter.Check(ctx, "client-b", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, result.Allowed)
}

func TestMemoryLimiterWindowSlides(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(testLogger())

	window := 30 * time.Millisecond

	_, err := limiter.Check(ctx, "client-a", 1, window)
	require.NoError(t, err)

	_, err = limiter.Check(ctx, "client-a", 1, window)
	require.True(t, errors.Is(err, ErrLimitExceeded))

	time.Sleep(window + 10*time.Millisecond)

	result, err := limiter.Check(ctx, "client-a", 1, window)
	require.NoError(t, err)
	require.True(t, result.Allowed)
}

func TestMemoryLimiterCleanup(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(testLogger())

	_, err := limiter.Check(ctx, "stale", 5, 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	limiter.cleanup(10 * time.Millisecond)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	require.Empty(t, limiter.buckets)
}
