package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type fn func(ctx context.Context) error
type shouldRetry func(err error, attempt int) bool

// Policy bounds a retry loop. Backoff is the first wait; later waits grow
// exponentially.
type Policy struct {
	Attempts int
	Backoff  time.Duration
}

var DefaultPolicy = Policy{Attempts: 3, Backoff: 50 * time.Millisecond}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.Backoff
	exp.MaxElapsedTime = 0

	attempts := max(p.Attempts, 1)
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// WrapWithRetry - wraps the given function, retries it while shouldRetry returns true and attempts are left.
// Stops early when ctx is done and returns the last error f produced.
func WrapWithRetry(f fn, shouldRetry shouldRetry, policy Policy) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var (
			attempt int
			last    error
		)
		op := func() error {
			last = f(ctx)
			if last == nil {
				return nil
			}
			attempt++
			if !shouldRetry(last, attempt) {
				return backoff.Permanent(last)
			}
			return last
		}

		if err := backoff.Retry(op, policy.backOff(ctx)); err != nil {
			if last != nil {
				return last
			}
			return err
		}
		return nil
	}
}

// Do runs f once under policy.
func Do(ctx context.Context, policy Policy, shouldRetry shouldRetry, f fn) error {
	return WrapWithRetry(f, shouldRetry, policy)(ctx)
}
