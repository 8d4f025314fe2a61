package errors

import (
	"context"
	"math"
	"time"
)

const (
	MaxRetries        = 3
	InitialBackoff    = 100 * time.Millisecond
	MaxBackoff        = 5 * time.Second
	BackoffMultiplier = 2.0
)

// WithRetry runs fn until it succeeds, the attempts are exhausted, or ctx is
// canceled. Backoff grows exponentially between attempts. It is used for
// startup connectivity, where the database or Redis may come up a moment
// after the service does.
func WithRetry(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}

	var err error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}

		if attempt == MaxRetries {
			return err
		}

		select {
		case <-time.After(backoffDuration(attempt + 1)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}

func backoffDuration(attempt int) time.Duration {
	delay := float64(InitialBackoff) * math.Pow(BackoffMultiplier, float64(attempt))
	if backoff := time.Duration(delay); backoff < MaxBackoff {
		return backoff
	}

	return MaxBackoff
}
