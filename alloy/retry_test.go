package alloy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	rateLimited := &APIError{Code: "RATE_LIMITED", Message: "slow down", StatusCode: 429}

	t.Run("success - first attempt succeeds", func(t *testing.T) {
		attempts := 0
		result, err := WithRetry(ctx, DefaultRetryPolicy(), func() (string, error) {
			attempts++
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 1, attempts)
	})

	t.Run("success - recovers after rate limit", func(t *testing.T) {
		policy := RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond, BackoffMultiplier: 2}

		attempts := 0
		result, err := WithRetry(ctx, policy, func() (string, error) {
			attempts++
			if attempts < 3 {
				return "", rateLimited
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, attempts)
	})

	t.Run("persistent 429 makes exactly 1 + maxRetries attempts", func(t *testing.T) {
		policy := RetryPolicy{MaxRetries: 3, InitialDelay: 10 * time.Millisecond, BackoffMultiplier: 2}

		attempts := 0
		start := time.Now()
		_, err := WithRetry(ctx, policy, func() (int, error) {
			attempts++
			return 0, rateLimited
		})
		elapsed := time.Since(start)

		require.ErrorIs(t, err, error(rateLimited))
		assert.Equal(t, 4, attempts)
		// Backoff sleeps: 10ms + 20ms + 40ms
		assert.GreaterOrEqual(t, elapsed, 70*time.Millisecond)
	})

	t.Run("last error propagates unchanged", func(t *testing.T) {
		policy := RetryPolicy{MaxRetries: 1, InitialDelay: time.Millisecond, BackoffMultiplier: 2}

		_, err := WithRetry(ctx, policy, func() (int, error) {
			return 0, rateLimited
		})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "RATE_LIMITED", apiErr.Code)
		assert.Equal(t, 429, apiErr.StatusCode)
	})

	t.Run("non-429 error makes exactly 1 attempt", func(t *testing.T) {
		serverErr := &APIError{Code: "HTTP_500", StatusCode: 500}

		attempts := 0
		_, err := WithRetry(ctx, DefaultRetryPolicy(), func() (int, error) {
			attempts++
			return 0, serverErr
		})

		require.ErrorIs(t, err, error(serverErr))
		assert.Equal(t, 1, attempts)
	})

	t.Run("partial result survives a non-retried error", func(t *testing.T) {
		items := []string{"itm_1", "itm_2"}

		result, err := WithRetry(ctx, DefaultRetryPolicy(), func() ([]string, error) {
			return items, ErrPageCapExceeded
		})

		require.ErrorIs(t, err, ErrPageCapExceeded)
		assert.Equal(t, items, result, "accumulated items must not be discarded with the error")
	})

	t.Run("timeout error is not retried", func(t *testing.T) {
		attempts := 0
		_, err := WithRetry(ctx, DefaultRetryPolicy(), func() (int, error) {
			attempts++
			return 0, ErrTimeout
		})

		require.ErrorIs(t, err, ErrTimeout)
		assert.Equal(t, 1, attempts)
	})

	t.Run("zero retries propagates immediately", func(t *testing.T) {
		policy := RetryPolicy{MaxRetries: 0, InitialDelay: time.Second, BackoffMultiplier: 2}

		attempts := 0
		start := time.Now()
		_, err := WithRetry(ctx, policy, func() (int, error) {
			attempts++
			return 0, rateLimited
		})

		require.Error(t, err)
		assert.Equal(t, 1, attempts)
		assert.Less(t, time.Since(start), 100*time.Millisecond, "must not sleep when no retries remain")
	})

	t.Run("cancelled context aborts the backoff sleep", func(t *testing.T) {
		policy := RetryPolicy{MaxRetries: 3, InitialDelay: 10 * time.Second, BackoffMultiplier: 2}

		cancelCtx, cancel := context.WithCancel(ctx)
		attempts := 0

		done := make(chan error, 1)
		go func() {
			_, err := WithRetry(cancelCtx, policy, func() (int, error) {
				attempts++
				return 0, rateLimited
			})
			done <- err
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
			assert.Equal(t, 1, attempts)
		case <-time.After(time.Second):
			t.Fatal("retry did not honor context cancellation")
		}
	})
}
