package omgo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryConfig configures the backoff used while connecting to an OMC server
// or waiting for a freshly spawned one to publish its endpoint.
type RetryConfig struct {
	MaxAttempts  int           // max number of attempts (default 3)
	InitialDelay time.Duration // initial delay before first retry (default 1s)
	MaxDelay     time.Duration // maximum delay between retries (default 30s)
	Multiplier   float64       // delay multiplier per retry (default 2.0)
	JitterPct    float64       // random jitter as percentage of delay (default 0.25)
}

// DefaultRetryConfig returns sensible defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterPct:    0.25,
	}
}

// pollConfig is tuned for watching the OMC log and port file appear: many
// quick attempts, no growth.
func pollConfig(timeout time.Duration) RetryConfig {
	step := 100 * time.Millisecond
	attempts := int(timeout / step)
	if attempts < 1 {
		attempts = 1
	}
	return RetryConfig{
		MaxAttempts:  attempts,
		InitialDelay: step,
		MaxDelay:     step,
		Multiplier:   1.0,
	}
}

// isRetryableError checks if an error is worth retrying
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	retryablePatterns := []string{
		"timeout",
		"connection reset",
		"connection refused",
		"temporarily unavailable",
		"no such file",
		"not available yet",
		"eof",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}

// withRetry executes a function with exponential backoff retry
func withRetry[T any](ctx context.Context, config RetryConfig, name string, verbose bool, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			if attempt > 1 && verbose {
				fmt.Printf("[RETRY] %s succeeded on attempt %d\n", name, attempt)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !isRetryableError(err) {
			return zero, err
		}

		// Don't retry on last attempt
		if attempt == config.MaxAttempts {
			break
		}

		// Calculate delay with exponential backoff + jitter
		delay := config.InitialDelay * time.Duration(math.Pow(config.Multiplier, float64(attempt-1)))
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}

		jitter := time.Duration(float64(delay) * config.JitterPct * (rand.Float64()*2 - 1))
		delay += jitter
		if delay < 0 {
			delay = config.InitialDelay
		}

		if verbose {
			fmt.Printf("[RETRY] %s attempt %d/%d failed: %v. Retrying in %v...\n",
				name, attempt, config.MaxAttempts, err, delay.Round(time.Millisecond))
		}

		// Wait with context awareness
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w", name, config.MaxAttempts, lastErr)
}
