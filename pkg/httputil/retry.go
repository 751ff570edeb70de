package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses, rate limits)
// with this type so that [Policy.Do] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Policy describes a bounded exponential backoff schedule.
//
// The zero value is not usable; construct with [DefaultPolicy] or fill in
// the fields explicitly. Sleep defaults to a real context-aware wait and
// exists so tests can observe delays without waiting out real time.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the wait after the first failed attempt.
	BaseDelay time.Duration

	// Multiplier scales the delay after each failed attempt.
	// Values below 1 are treated as 1 (constant delay).
	Multiplier float64

	// Sleep waits for d or until ctx is done. Nil means a real wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy returns the backoff schedule used for enrichment lookups:
// 3 attempts with a 1 second initial delay, doubling each retry.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}
}

// Do executes fn up to p.MaxAttempts times with exponential backoff.
// It only retries errors wrapped with [RetryableError]; other errors are
// returned immediately. Returns the last error if all attempts fail, or
// ctx.Err() if cancelled during a backoff wait.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.MaxAttempts, 1)
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = waitFor
	}

	delay := p.BaseDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			delay = time.Duration(float64(delay) * mult)
		}
	}
	return lastErr
}

// RetryWithBackoff is a convenience wrapper around [Policy.Do] with the
// default schedule.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultPolicy().Do(ctx, fn)
}

func waitFor(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
