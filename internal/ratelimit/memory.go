package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLimiter is the in-process Limiter used when no Redis is configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	log     *slog.Logger
}

// NewMemoryLimiter returns an in-memory limiter implementation.
func NewMemoryLimiter(log *slog.Logger) *MemoryLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryLimiter{
		buckets: make(map[string][]time.Time),
		log:     log,
	}
}

// Check enforces a sliding-window limit for the provided key.
func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	recent := keepRecent(m.buckets[key], windowStart)

	allowed := len(recent) < limit
	if allowed {
		recent = append(recent, now)
	}
	m.buckets[key] = recent

	remaining := limit - len(recent)
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   windowStart.Add(window),
	}

	if !allowed {
		return result, ErrLimitExceeded
	}

	return result, nil
}

// Run periodically evicts buckets that have been idle for longer than maxAge,
// until ctx is cancelled. Without it the bucket map grows with every client
// address ever seen.
func (m *MemoryLimiter) Run(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 || maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(maxAge)
		}
	}
}

func (m *MemoryLimiter) cleanup(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, requests := range m.buckets {
		if len(requests) == 0 || requests[len(requests)-1].Before(cutoff) {
			delete(m.buckets, key)
			removed++
		}
	}

	if removed > 0 {
		m.log.Debug("rate limit buckets evicted", slog.Int("removed", removed))
	}
}

func keepRecent(requests []time.Time, windowStart time.Time) []time.Time {
	first := 0
	for first < len(requests) && requests[first].Before(windowStart) {
		first++
	}

	if first == 0 {
		return requests
	}

	copy(requests, requests[first:])
	return requests[:len(requests)-first]
}
