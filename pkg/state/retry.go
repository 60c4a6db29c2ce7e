package state

import (
	"context"
	"errors"
	"net"
	"time"
)

// retryableError marks an error that should trigger a retry.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// retryable wraps err as retryable when it is a network failure.
func retryable(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &retryableError{err: err}
	}
	return err
}

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// retryDelay is the first backoff interval; it doubles per attempt.
var retryDelay = 200 * time.Millisecond

// retryWithBackoff retries fn up to 3 times with exponential backoff.
// Only errors wrapped by retryable trigger retries. The last error is
// returned unwrapped.
func retryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
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
	var re *retryableError
	if errors.As(lastErr, &re) {
		return re.err
	}
	return lastErr
}
