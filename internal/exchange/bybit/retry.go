package bybit

import (
	"context"
	"math"
	"time"
)

// RetryConfig controls the transport-level retry of REST calls. This is
// deliberately below the engine: one engine action still maps to at most
// one logical order; only transient transport failures are repeated.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the retry settings used by every client call.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2.0,
	}
}

// withRetry executes fn, repeating it with exponential backoff while the
// error stays retryable and the context stays live.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt == c.retry.MaxRetries || !IsRetryable(lastErr) {
			break
		}

		delay := time.Duration(float64(c.retry.InitialDelay) *
			math.Pow(c.retry.BackoffFactor, float64(attempt)))
		if delay > c.retry.MaxDelay {
			delay = c.retry.MaxDelay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
