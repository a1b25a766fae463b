package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoReturnsResultWithinBudget(t *testing.T) {
	err := Do(context.Background(), "fast", time.Second, "too slow", func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestDoPassesThroughNonTimeoutErrors(t *testing.T) {
	boom := errors.New("boom")
	err := Do(context.Background(), "failing", time.Second, "too slow", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsTimeout(err))
}

func TestDoTimesOut(t *testing.T) {
	err := Do(context.Background(), "slow", 20*time.Millisecond, "operation took too long", func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, "operation took too long", err.Error())
}

func TestDoValueReturnsValue(t *testing.T) {
	value, err := DoValue(context.Background(), "fetch", time.Second, "too slow", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestDoValueZeroValueOnTimeout(t *testing.T) {
	value, err := DoValue(context.Background(), "slow", 20*time.Millisecond, "too slow", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "partial", ctx.Err()
	})
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Empty(t, value)
}

func TestTimeoutErrorDefaultMessage(t *testing.T) {
	err := &TimeoutError{Op: "storage.upload", Timeout: 30 * time.Second}
	assert.Contains(t, err.Error(), "storage.upload")
	assert.Contains(t, err.Error(), "30s")
}

func TestRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("persistent")
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 10, 50*time.Millisecond, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.Less(t, calls, 10)
}
