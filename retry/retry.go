// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package retry contains [asyncarray.Middleware] that allows failing
// callbacks to be retried.
//
// A retried callback is invoked again for the same element (and, for
// reductions, with the same accumulator) before any later element is
// visited, so retries never disturb the ordering of an operation.
//
// The [Middleware] is a general-purpose building block for retryable
// behaviors using a [Classifier] function to drive the retry policy. An
// exponential [Backoff] and a trivial [Loop] implementation are
// provided.
package retry

import (
	"context"
	"errors"
	"runtime/trace"

	"vawter.tech/asyncarray"
)

// A Classifier is a function that determines if an error is retryable.
// Each step is associated with a state value, which is initially the
// zero value for the S type. If the callback fails, the error and the
// current state are passed to the Classifier. The Classifier may
// return an error to fail the step if it should not be retried.
//
// If the step should be retried, the Classifier returns a channel that
// emits a value when the callback should be invoked again (e.g.:
// [time.After]). Closing the channel without emitting a value will
// abandon the retry, failing with the error most recently passed to
// the Classifier.
//
// If the context passed to the callback is canceled while waiting for
// the retry signal, the step fails with the previously examined error
// joined with the context's error.
//
// If the returned channel and error are both nil, the error will be
// considered to have been handled by the Classifier and the step will
// be considered a success. The element is then skipped: a mapped
// element holds the zero value and a reduction keeps its accumulator.
type Classifier[S, N any] func(ctx context.Context, state *S, err error) (<-chan N, error)

// Middleware constructs an [asyncarray.Middleware] around a
// [Classifier] function.
func Middleware[S, N any](fn Classifier[S, N]) asyncarray.Middleware {
	return func(outer context.Context) (context.Context, asyncarray.Invoker) {
		return outer, func(ctx context.Context, step asyncarray.Step) error {
			var state S
			for {
				err := step(ctx)
				if err == nil {
					return nil
				}
				next, fail := fn(ctx, &state, err)
				// Classifier is rejecting the error.
				if fail != nil {
					return fail
				}
				// Classifier ate the error condition.
				if next == nil {
					return nil
				}
				if err := waitOnChannel(ctx, next, err); err != nil {
					return err
				}
			}
		}
	}
}

func waitOnChannel[N any](ctx context.Context, next <-chan N, err error) error {
	defer trace.StartRegion(ctx, "retry wait").End()
	select {
	case _, ok := <-next:
		if ok {
			return nil
		}
		return err
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
}
