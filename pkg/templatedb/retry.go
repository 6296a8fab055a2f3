package templatedb

import (
	"context"
	"errors"
	"time"
)

// Connection attempts made by OpenRedis and OpenMongo before giving up.
const (
	connectAttempts = 3
	connectDelay    = 250 * time.Millisecond
)

// retryableError marks a failure worth another attempt.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// retry runs fn up to attempts times, doubling delay after each failure.
// Only errors wrapped in retryableError are retried. It returns the last
// error, or ctx.Err() if ctx ends while waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !errors.As(err, new(*retryableError)) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// ping retries a server round trip. Context errors end it immediately.
func ping(ctx context.Context, fn func(context.Context) error) error {
	return retry(ctx, connectAttempts, connectDelay, func() error {
		err := fn(ctx)
		if err == nil || ctx.Err() != nil {
			return err
		}
		return &retryableError{err}
	})
}
