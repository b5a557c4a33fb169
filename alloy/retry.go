package alloy

import (
	"context"
	"time"
)

// RetryPolicy is static configuration for one retried call.
// The backoff delay before retry n (0-indexed) is
// InitialDelay * BackoffMultiplier^n.
type RetryPolicy struct {
	MaxRetries        int
	InitialDelay      time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy mirrors the platform guidance for rate limits:
// three retries starting at one second, doubling each attempt
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		InitialDelay:      1 * time.Second,
		BackoffMultiplier: 2,
	}
}

// WithRetry executes op, retrying only rate-limited (429) failures up
// to policy.MaxRetries with exponential backoff. Any other error, or
// exhaustion, propagates the last result and error unchanged, so
// operations that return partial results with an error keep them.
// The decorator knows nothing about op; callers must only wrap
// safely-retryable calls. Backoff sleeps honor context cancellation.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	var zero T

	delay := policy.InitialDelay
	for attempt := 0; ; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}

		if !IsRateLimited(err) || attempt >= policy.MaxRetries {
			return result, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * policy.BackoffMultiplier)
	}
}
