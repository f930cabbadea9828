// Package retry wraps github.com/sethvargo/go-retry for the bounded
// re-sampling loops in key generation.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Func is the unit of work retried by Do.
type Func = retry.RetryFunc

type Backoff struct {
	b retry.Backoff
}

// RetryableError marks err as retryable. Errors not marked end Do
// immediately.
func RetryableError(err error) error {
	return retry.RetryableError(err)
}

// Constant retries with a fixed pause between attempts.
func Constant(pause time.Duration) Backoff {
	if pause <= 0 {
		pause = time.Microsecond
	}
	return Backoff{b: retry.NewConstant(pause)}
}

// WithMaxRetries caps the number of retries after the first attempt.
func (in Backoff) WithMaxRetries(n uint64) Backoff {
	in.b = retry.WithMaxRetries(n, in.b)
	return in
}

// Do runs f until it succeeds, returns a non-retryable error, the retries run
// out (the last error is returned unwrapped) or ctx is done.
func (in Backoff) Do(ctx context.Context, f Func) error {
	return retry.Do(ctx, in.b, f)
}
