package state

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func init() {
	retryDelay = time.Millisecond
}

func TestRetryable(t *testing.T) {
	if retryable(nil) != nil {
		t.Error("retryable(nil) should be nil")
	}
	plain := errors.New("boom")
	if isRetryable(retryable(plain)) {
		t.Error("plain errors are not retried")
	}
	netErr := &net.OpError{Op: "dial", Err: errors.New("refused")}
	wrapped := retryable(netErr)
	if !isRetryable(wrapped) {
		t.Error("network errors should be retried")
	}
	if !errors.Is(wrapped, netErr) {
		t.Error("wrapped error should unwrap to the cause")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	netErr := &net.OpError{Op: "read", Err: errors.New("reset")}

	calls := 0
	err := retryWithBackoff(ctx, func() error {
		calls++
		if calls < 3 {
			return retryable(netErr)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err = %v, calls = %d; want success after 3 calls", err, calls)
	}

	calls = 0
	err = retryWithBackoff(ctx, func() error {
		calls++
		return retryable(netErr)
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if isRetryable(err) || !errors.Is(err, netErr) {
		t.Errorf("err = %v, want the unwrapped cause", err)
	}

	calls = 0
	plain := errors.New("fatal")
	if err := retryWithBackoff(ctx, func() error { calls++; return plain }); err != plain || calls != 1 {
		t.Errorf("non-retryable: err = %v, calls = %d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retryWithBackoff(ctx, func() error {
		return retryable(&net.OpError{Op: "dial", Err: errors.New("refused")})
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
