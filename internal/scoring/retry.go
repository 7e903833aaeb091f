package scoring

import (
	"context"
	"time"
)

// retryConfig controls the per-candidate retry loop around expensive model
// calls.
type retryConfig struct {
	maxAttempts int
	baseDelay   time.Duration
	multiplier  float64
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxAttempts: 3,
		baseDelay:   1 * time.Second,
		multiplier:  2,
	}
}

// retryWithBackoff executes fn up to cfg.maxAttempts times with exponential
// backoff between attempts. Retry is skipped on context cancellation.
func retryWithBackoff[T any](ctx context.Context, cfg retryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T
	backoff := cfg.baseDelay

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if attempt < cfg.maxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * cfg.multiplier)
			}
		}
	}
	return zero, lastErr
}
