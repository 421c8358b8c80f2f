// Package retry provides the two combinators the transports compose with:
// a bounded retry loop and a deadline wrapper. Both are generic and know
// nothing about HTTP; they operate on any context-aware function.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/ebarkhatov/unihttp/internal/httperr"
	"github.com/ebarkhatov/unihttp/internal/utils"
)

// Policy decides whether a failure is transient enough to retry.
type Policy func(err error) bool

// settings holds the per-call retry configuration.
type settings struct {
	// policy is the transient-error predicate. Defaults to retrying every failure.
	policy Policy
	// minPause and maxPause bound the jittered pause between attempts.
	// Both zero means no pause.
	minPause time.Duration
	maxPause time.Duration
}

// Option customizes a Do call.
type Option func(*settings)

// WithPolicy installs a transient-error predicate. Failures rejected by the
// policy are returned immediately without further attempts.
func WithPolicy(policy Policy) Option {
	return func(s *settings) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithPause sleeps a random duration between minPause and maxPause before
// each re-attempt.
func WithPause(minPause, maxPause time.Duration) Option {
	return func(s *settings) {
		s.minPause = minPause
		s.maxPause = maxPause
	}
}

// Do invokes op up to maxRetries+1 times, returning the first success.
// Each attempt is a fresh invocation. When all attempts fail, the LAST
// failure is returned verbatim so callers can still inspect its kind.
// A done context stops further attempts but never fabricates a new error:
// the last observed failure is what the caller sees.
func Do[T any](ctx context.Context, maxRetries int, op func(context.Context) (T, error), opts ...Option) (T, error) {
	s := settings{policy: httperr.IsRetryable}
	for _, opt := range opts {
		opt(&s)
	}

	if maxRetries < 0 {
		maxRetries = 0
	}

	var (
		result  T
		lastErr error
	)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if !pause(ctx, s.minPause, s.maxPause) {
				break
			}
		}

		result, lastErr = op(ctx)
		if lastErr == nil {
			return result, nil
		}

		if !s.policy(lastErr) {
			break
		}
	}

	var zero T

	return zero, lastErr
}

// pause waits the jittered inter-attempt delay, giving up early when the
// context is done. It reports whether another attempt may run.
func pause(ctx context.Context, minPause, maxPause time.Duration) bool {
	delay := utils.RandomPauseDuration(minPause, maxPause)
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// result carries an operation's outcome across the timeout race.
type result[T any] struct {
	value T
	err   error
}

// WithTimeout races op against a deadline of length d. A non-positive d
// returns op's result unwrapped: zero means "no timeout" here, not
// "already expired". On expiry the op's context is cancelled, so the
// underlying transport aborts promptly, and the caller receives a typed
// timeout error carrying d; the raw context.DeadlineExceeded never escapes.
// Cancellation of the parent context is passed through untranslated.
func WithTimeout[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	// Buffered so a late-settling op never blocks on an abandoned channel.
	resultCh := make(chan result[T], 1)

	go func() {
		value, err := op(opCtx)
		resultCh <- result[T]{value: value, err: err}
	}()

	var zero T

	select {
	case res := <-resultCh:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, &httperr.TimeoutError{Configured: d}
		}

		return res.value, res.err
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		return zero, &httperr.TimeoutError{Configured: d}
	}
}
