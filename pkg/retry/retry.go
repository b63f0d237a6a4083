// Package retry holds the retry policy injected into data-access layers.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds how an operation is retried. Backoff receives the 1-based
// number of the attempt that just failed and returns the wait before the next.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// Linear waits step*attempt between attempts: step, 2*step, 3*step...
func Linear(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Default is three attempts with a one second linear step.
func Default() Policy {
	return Policy{MaxAttempts: 3, Backoff: Linear(time.Second)}
}

// None runs an operation exactly once.
func None() Policy {
	return Policy{MaxAttempts: 1}
}

// Notify is called after each failed attempt that will be retried.
type Notify func(err error, attempt int, wait time.Duration)

// Permanent marks err as not worth retrying. Do returns the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a permanent error, the policy is
// exhausted, or ctx is done.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error, notify Notify) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var b backoff.BackOff = &schedule{fn: p.Backoff}
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		return op(ctx)
	}, b, func(err error, wait time.Duration) {
		if notify != nil {
			notify(err, attempt, wait)
		}
	})
}

// schedule adapts a Policy.Backoff function to backoff.BackOff.
type schedule struct {
	fn      func(int) time.Duration
	attempt int
}

func (s *schedule) NextBackOff() time.Duration {
	s.attempt++
	if s.fn == nil {
		return 0
	}
	d := s.fn(s.attempt)
	if d < 0 {
		return 0
	}
	return d
}

func (s *schedule) Reset() { s.attempt = 0 }
