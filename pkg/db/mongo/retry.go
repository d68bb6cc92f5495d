package mongo

import (
	"context"
	"errors"
	"time"

	apperrors "washbook/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// RetryPolicy bounds the exponential backoff applied to read paths.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// ErrUnavailable marks a store outage raised outside the driver, e.g. by
// in-memory stores.
var ErrUnavailable = errors.New("store temporarily unavailable")

// IsTransient reports whether err is a store failure worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) {
		return labeled.HasErrorLabel("RetryableReadError") || labeled.HasErrorLabel("TransientTransactionError")
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		// NotWritablePrimary, InterruptedAtShutdown, PrimarySteppedDown, HostUnreachable
		for _, code := range []int{10107, 11600, 189, 6} {
			if serverErr.HasErrorCode(code) {
				return true
			}
		}
	}
	return false
}

// WithRetry runs fn until it succeeds, returns a non-transient error, or the
// attempts are exhausted. The delay doubles after every failed attempt.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, isRetryable func(error) bool, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := max(policy.Attempts, 1)
	delay := policy.Backoff

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt == attempts || !isRetryable(err) {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}
	return zero, lastErr
}

// StoreError converts a failed store call into the AppError returned to
// clients. AppErrors pass through unchanged.
func StoreError(message string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if IsTransient(err) {
		return apperrors.TransientStore(message, err)
	}
	return apperrors.Internal(message, err)
}
