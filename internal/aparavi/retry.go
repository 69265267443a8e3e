package aparavi

import (
	"context"
	"time"
)

// Transport-level retry tuning. This only covers connection failures on
// individual requests; task readiness has its own polling loop with the
// service's expected delay growth.
const (
	transportRetries   = 3
	transportBaseDelay = 100 * time.Millisecond
	transportMaxDelay  = 2 * time.Second
	backoffMultiplier  = 2.0
)

// retryWithBackoff runs fn up to attempts times with exponential backoff,
// stopping early on success or context cancellation. retryable decides
// whether an error is worth another attempt.
func retryWithBackoff[T any](ctx context.Context, attempts int, fn func() (T, error), retryable func(error) bool) (T, error) {
	var zero T
	var lastErr error
	delay := transportBaseDelay

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) || ctx.Err() != nil {
			return zero, err
		}

		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * backoffMultiplier)
				if delay > transportMaxDelay {
					delay = transportMaxDelay
				}
			}
		}
	}

	return zero, lastErr
}
