// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package limit provides [asyncarray.Middleware] to impose execution
// limits on callbacks.
//
// Attach the Middlewares using [asyncarray.WithMiddleware]. A single
// Middleware value may be shared between several Arrays to impose a
// common limit.
package limit

import (
	"context"
	"errors"
	"runtime/trace"

	"golang.org/x/time/rate"
	"vawter.tech/asyncarray"
)

// WithMaxConcurrency limits the total number of callbacks executing at
// once. A callback that cannot acquire a slot before the context
// passed to it is canceled fails with the context's error.
func WithMaxConcurrency(limit int) asyncarray.Middleware {
	if limit <= 0 {
		panic(errors.New("limit must be greater than zero"))
	}
	ch := make(chan struct{}, limit)
	release := func(ctx context.Context, step asyncarray.Step) error {
		defer func() { <-ch }()
		return step(ctx)
	}
	return func(outer context.Context) (context.Context, asyncarray.Invoker) {
		// Fast-path: A concurrency slot is available.
		select {
		case ch <- struct{}{}:
			return outer, release
		default:
		}

		defer trace.StartRegion(outer, "concurrency wait").End()

		select {
		case ch <- struct{}{}:
			return outer, release
		case <-outer.Done():
			return outer, asyncarray.InvokerErr(outer.Err())
		}
	}
}

// WithMaxRate is a wrapper around a [rate.Limiter] that limits the
// rate at which callbacks are started. A callback that is still
// waiting when the context passed to it is canceled fails with the
// limiter's error.
func WithMaxRate(r float64, b int) asyncarray.Middleware {
	l := rate.NewLimiter(rate.Limit(r), b)
	return func(outer context.Context) (context.Context, asyncarray.Invoker) {
		// Fast-path: there's capacity.
		if l.Allow() {
			return outer, asyncarray.InvokerCall
		}

		defer trace.StartRegion(outer, "rate limit wait").End()

		if err := l.Wait(outer); err != nil {
			return outer, asyncarray.InvokerErr(err)
		}
		return outer, asyncarray.InvokerCall
	}
}
