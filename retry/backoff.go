// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"math/rand/v2"
	"time"

	"vawter.tech/asyncarray"
)

// Backoff invokes the callback for a failing element again after an
// exponentially increasing delay with jitter. The operation waits for
// the element being retried: later elements are not visited and, for a
// reduction, the accumulator handed to the next attempt is unchanged.
// The delay restarts at MinDelay for every element.
type Backoff struct {
	Jitter      time.Duration    // Delays are adjusted ±50% of this value. Default is 0.
	MaxAttempts int              // Invocations per element. Defaults to 4.
	MaxDelay    time.Duration    // Defaults to 1s if unset.
	MinDelay    time.Duration    // Defaults to 10ms if unset.
	Multiplier  float32          // Defaults to 10.0 if unset.
	Retryable   func(error) bool // Defaults to retrying all errors.
}

// Middleware returns an [asyncarray.Middleware] that applies
// exponential backoff with jitter to failing elements. A non-retryable
// error fails the operation verbatim; exhausting the attempts fails it
// with a [MaxAttemptsError]. Canceling the bound context abandons the
// wait between attempts.
func (b *Backoff) Middleware() asyncarray.Middleware {
	b = b.sanitize() // Shadowing receiver.
	// Per-element retry state.
	type element struct {
		attempts int
		delay    time.Duration
	}
	return Middleware(func(ctx context.Context, el *element, err error) (<-chan time.Time, error) {
		if !b.Retryable(err) {
			return nil, err
		}

		el.attempts++
		if el.attempts >= b.MaxAttempts {
			return nil, maxAttempts(ctx, el.attempts, err)
		}

		next := time.Duration(float32(el.delay) * b.Multiplier)
		el.delay = min(max(b.MinDelay, next), b.MaxDelay)
		jitter := time.Duration((rand.Float32() - 0.5) * float32(b.Jitter))

		return time.After(el.delay + jitter), nil
	})
}

// sanitize returns a copy with all fields initialized to a reasonable default.
func (b *Backoff) sanitize() *Backoff {
	ret := *b
	if ret.MaxAttempts == 0 {
		ret.MaxAttempts = 4
	}
	if ret.MaxDelay == 0 {
		ret.MaxDelay = time.Second
	}
	if ret.MinDelay == 0 {
		ret.MinDelay = 10 * time.Millisecond
	}
	if ret.Multiplier == 0 {
		ret.Multiplier = 10
	}
	if ret.Retryable == nil {
		ret.Retryable = func(_ error) bool { return true }
	}
	return &ret
}
