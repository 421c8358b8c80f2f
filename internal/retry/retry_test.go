package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebarkhatov/unihttp/internal/httperr"
)

// errAttempt is the failure injected by the fake operations below.
var errAttempt = errors.New("attempt failed")

// TestDo_SucceedsAfterFailures tests that an operation failing n times and
// succeeding on attempt n+1 returns the success value.
func TestDo_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		maxRetries int
		failures   int
	}{
		{
			name:       "no retries needed",
			maxRetries: 0,
			failures:   0,
		},
		{
			name:       "one failure then success",
			maxRetries: 1,
			failures:   1,
		},
		{
			name:       "succeeds on the last allowed attempt",
			maxRetries: 3,
			failures:   3,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			invocations := 0
			op := func(_ context.Context) (string, error) {
				invocations++
				if invocations <= tt.failures {
					return "", errAttempt
				}

				return "ok", nil
			}

			value, err := Do(context.Background(), tt.maxRetries, op)

			require.NoError(t, err)
			assert.Equal(t, "ok", value)
			assert.Equal(t, tt.failures+1, invocations)
		})
	}
}

// TestDo_ExhaustsAttempts tests that a permanently failing operation is
// invoked exactly maxRetries+1 times and the final error is the original.
func TestDo_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	const maxRetries = 2

	invocations := 0
	op := func(_ context.Context) (int, error) {
		invocations++
		return 0, errAttempt
	}

	_, err := Do(context.Background(), maxRetries, op)

	// The last failure must surface verbatim, not wrapped.
	require.ErrorIs(t, err, errAttempt)
	assert.Equal(t, errAttempt, err)
	assert.Equal(t, maxRetries+1, invocations)
}

// TestDo_NegativeRetriesMeansSingleAttempt tests defensive clamping.
func TestDo_NegativeRetriesMeansSingleAttempt(t *testing.T) {
	t.Parallel()

	invocations := 0
	op := func(_ context.Context) (int, error) {
		invocations++
		return 0, errAttempt
	}

	_, err := Do(context.Background(), -3, op)

	require.Error(t, err)
	assert.Equal(t, 1, invocations)
}

// TestDo_PolicyStopsRetries tests the transient-error predicate.
func TestDo_PolicyStopsRetries(t *testing.T) {
	t.Parallel()

	permanent := &httperr.StatusError{StatusCode: 404, Status: "Not Found"}

	invocations := 0
	op := func(_ context.Context) (int, error) {
		invocations++
		return 0, permanent
	}

	skipClientErrors := func(err error) bool {
		var statusErr *httperr.StatusError
		if errors.As(err, &statusErr) {
			return statusErr.StatusCode < 400 || statusErr.StatusCode >= 500
		}

		return true
	}

	_, err := Do(context.Background(), 5, op, WithPolicy(skipClientErrors))

	require.ErrorIs(t, err, httperr.ErrHTTPStatus)
	assert.Equal(t, 1, invocations)
}

// TestDo_StopsWhenContextDone tests that a cancelled context halts re-attempts
// while still returning the last observed failure.
func TestDo_StopsWhenContextDone(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	invocations := 0
	op := func(_ context.Context) (int, error) {
		invocations++
		cancel()

		return 0, errAttempt
	}

	_, err := Do(ctx, 10, op)

	require.ErrorIs(t, err, errAttempt)
	assert.Equal(t, 1, invocations)
}

// TestWithTimeout_ZeroIsPassthrough tests that zero duration wraps nothing.
func TestWithTimeout_ZeroIsPassthrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	op := func(opCtx context.Context) (string, error) {
		// No deadline must be attached when the timeout is zero.
		_, hasDeadline := opCtx.Deadline()
		assert.False(t, hasDeadline)

		return "done", nil
	}

	value, err := WithTimeout(ctx, 0, op)

	require.NoError(t, err)
	assert.Equal(t, "done", value)
}

// TestWithTimeout_SettlesBeforeDeadline tests the fast-settle path.
func TestWithTimeout_SettlesBeforeDeadline(t *testing.T) {
	t.Parallel()

	op := func(_ context.Context) (string, error) {
		return "fast", nil
	}

	value, err := WithTimeout(context.Background(), time.Second, op)

	require.NoError(t, err)
	assert.Equal(t, "fast", value)
}

// TestWithTimeout_Expires tests that a slow operation is cancelled and the
// caller receives a typed timeout error referencing the configured duration.
func TestWithTimeout_Expires(t *testing.T) {
	t.Parallel()

	const deadline = 50 * time.Millisecond

	cancelled := make(chan struct{})

	op := func(opCtx context.Context) (string, error) {
		<-opCtx.Done()
		close(cancelled)

		return "", opCtx.Err()
	}

	start := time.Now()
	_, err := WithTimeout(context.Background(), deadline, op)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, httperr.ErrTimeout)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)

	var timeoutErr *httperr.TimeoutError

	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, deadline, timeoutErr.Configured)

	// The operation must have observed the cancellation signal.
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("operation never observed cancellation")
	}

	// Settled within a reasonable margin of the deadline.
	assert.Less(t, elapsed, deadline+200*time.Millisecond)
}

// TestWithTimeout_ErrorResultIsMapped tests that an op returning the raw
// deadline error after expiry is still mapped to the typed timeout error.
func TestWithTimeout_ErrorResultIsMapped(t *testing.T) {
	t.Parallel()

	op := func(opCtx context.Context) (int, error) {
		<-opCtx.Done()
		return 0, opCtx.Err()
	}

	_, err := WithTimeout(context.Background(), 20*time.Millisecond, op)

	require.ErrorIs(t, err, httperr.ErrTimeout)
}

// TestWithTimeout_ParentCancellationPassesThrough tests that cancelling the
// parent context is not reported as a timeout.
func TestWithTimeout_ParentCancellationPassesThrough(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	op := func(opCtx context.Context) (int, error) {
		<-opCtx.Done()
		return 0, opCtx.Err()
	}

	_, err := WithTimeout(ctx, time.Second, op)

	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, httperr.ErrTimeout)
}

// TestDo_WithPause tests that the jittered pause runs between attempts.
func TestDo_WithPause(t *testing.T) {
	t.Parallel()

	invocations := 0
	op := func(_ context.Context) (int, error) {
		invocations++
		if invocations < 3 {
			return 0, errAttempt
		}

		return invocations, nil
	}

	start := time.Now()
	value, err := Do(context.Background(), 2, op, WithPause(10*time.Millisecond, 20*time.Millisecond))
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 3, value)
	// Two pauses of at least 10ms each.
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}

// TestDo_CancellationInterruptsPause tests that a context cancelled in the
// middle of an inter-attempt pause stops waiting promptly instead of
// sleeping out the full pause.
func TestDo_CancellationInterruptsPause(t *testing.T) {
	t.Parallel()

	invocations := 0
	op := func(_ context.Context) (int, error) {
		invocations++
		return 0, errAttempt
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Do(ctx, 3, op, WithPause(time.Second, time.Second))
	elapsed := time.Since(start)

	// The last observed failure comes back, never a fabricated one.
	require.ErrorIs(t, err, errAttempt)
	assert.Equal(t, 1, invocations)
	assert.Less(t, elapsed, 500*time.Millisecond)
}
