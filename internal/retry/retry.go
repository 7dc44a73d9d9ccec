package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

const MaxRetries = 3

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Policy controls Do. The zero value uses MaxRetries and Backoff.
type Policy struct {
	Attempts int
	Wait     func(attempt int) time.Duration
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// attempts run out. The last error is returned.
func Do[T any](ctx context.Context, p Policy, log *slog.Logger, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = MaxRetries
	}
	wait := p.Wait
	if wait == nil {
		wait = Backoff
	}

	var (
		out     T
		lastErr error
	)
	for attempt := range attempts {
		out, lastErr = fn(ctx)
		if lastErr == nil || !IsRetryable(lastErr) || attempt == attempts-1 {
			break
		}
		if log != nil {
			log.Warn("retryable error", "attempt", attempt, "error", lastErr)
		}
		select {
		case <-time.After(wait(attempt)):
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	return out, lastErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
