// Package retrier provides a small bounded-backoff helper for transient
// provider failures. Attempts stop as soon as the context expires, so a
// retried fetch can never outlive its deadline.
package retrier

import (
	"context"
	"time"
)

// Retrier retries a function a fixed number of times with linear backoff.
type Retrier struct {
	attempts int
	interval time.Duration
}

// New creates a Retrier performing attempts calls at most, waiting interval
// between them. attempts < 1 is treated as a single call.
func New(attempts int, interval time.Duration) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrier{attempts: attempts, interval: interval}
}

// Do runs fn until it succeeds, attempts are exhausted or ctx is done.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.interval):
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
	}
	return err
}

// DoWithData runs fn with retries and returns its value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
