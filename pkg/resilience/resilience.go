package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// TimeoutError marks an external call that exceeded its time budget. It is
// deliberately distinct from validation and not-found failures so callers can
// present a retry-suggesting message.
type TimeoutError struct {
	Op      string
	Message string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Timeout)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Do runs fn under a bounded-time envelope. The derived context is cancelled
// on expiry; fn must honor it. On expiry the returned error is a
// TimeoutError carrying the operation-specific message.
func Do(ctx context.Context, op string, timeout time.Duration, message string, fn func(ctx context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(cctx)
	if err != nil && isDeadline(cctx, err) {
		return &TimeoutError{Op: op, Message: message, Timeout: timeout}
	}
	return err
}

// DoValue is Do for calls that return a value.
func DoValue[T any](ctx context.Context, op string, timeout time.Duration, message string, fn func(ctx context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	value, err := fn(cctx)
	if err != nil && isDeadline(cctx, err) {
		var zero T
		return zero, &TimeoutError{Op: op, Message: message, Timeout: timeout}
	}
	return value, err
}

func isDeadline(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded
}

// Retry runs fn up to attempts times with exponential backoff, stopping early
// if the context is cancelled. The last error is returned unwrapped from the
// retry machinery.
func Retry(ctx context.Context, attempts uint, baseDelay time.Duration, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(baseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}
