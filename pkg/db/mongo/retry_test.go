package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "washbook/pkg/errors"
)

var errFlaky = errors.New("flaky")

func retryFlaky(err error) bool { return errors.Is(err, errFlaky) }

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := WithRetry(context.Background(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, retryFlaky,
		func(ctx context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errFlaky
			}
			return 42, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("not found")
	calls := 0
	_, err := WithRetry(context.Background(), RetryPolicy{Attempts: 5, Backoff: time.Millisecond}, retryFlaky,
		func(ctx context.Context) (string, error) {
			calls++
			return "", permanent
		})
	if !errors.Is(err, permanent) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, retryFlaky,
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errFlaky
		})
	if !errors.Is(err, errFlaky) {
		t.Errorf("expected flaky error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := WithRetry(ctx, RetryPolicy{Attempts: 10, Backoff: time.Hour}, retryFlaky,
		func(ctx context.Context) (int, error) {
			calls++
			cancel()
			return 0, errFlaky
		})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil must not be transient")
	}
	if IsTransient(context.Canceled) {
		t.Error("cancellation must not be transient")
	}
	if !IsTransient(context.DeadlineExceeded) {
		t.Error("deadline exceeded should be transient")
	}
	if IsTransient(errors.New("duplicate key")) {
		t.Error("plain errors must not be transient")
	}
}

func TestStoreError(t *testing.T) {
	wrapped := fmt.Errorf("find provider: %w", ErrUnavailable)
	if !IsTransient(wrapped) {
		t.Fatal("wrapped ErrUnavailable should be transient")
	}
	if !apperrors.HasCode(StoreError("read failed", wrapped), apperrors.CodeTransientStore) {
		t.Error("transient failure should map to TRANSIENT_STORE")
	}
	if !apperrors.HasCode(StoreError("read failed", errors.New("boom")), apperrors.CodeInternal) {
		t.Error("permanent failure should map to INTERNAL_ERROR")
	}
	notFound := apperrors.NotFound("Booking")
	if StoreError("read failed", notFound) != notFound {
		t.Error("AppErrors should pass through unchanged")
	}
}
