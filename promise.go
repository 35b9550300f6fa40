// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"runtime/trace"

	"vawter.tech/asyncarray/internal/state"
)

// An Awaitable produces a value at some future point. Both [Promise]
// and [Array] are Awaitable, so either may be adopted by [From].
type Awaitable[T any] interface {
	Await(ctx context.Context) (T, error)
}

// A Promise is a lazily-started, single-assignment future value.
//
// The computation behind a Promise does not begin until one of
// [Promise.Await], [Promise.Done], [Promise.Start], or [Promise.Then]
// is first called. It is then executed exactly once, in its own
// goroutine, and every caller observes the same outcome. A panic in
// the computation is reported as a [RecoveredError].
//
// All methods on a Promise are safe for concurrent use.
type Promise[T any] struct {
	st *state.State[T]
}

var _ Awaitable[int] = (*Promise[int])(nil)

// NewPromise returns a Promise that will execute the function once it
// is driven to completion.
func NewPromise[T any](fn func() (T, error)) *Promise[T] {
	return &Promise[T]{st: state.New(fn)}
}

// Resolved returns a settled Promise holding the value.
func Resolved[T any](val T) *Promise[T] {
	return &Promise[T]{st: state.Settled(val, nil)}
}

// Rejected returns a settled Promise holding the error.
func Rejected[T any](err error) *Promise[T] {
	return &Promise[T]{st: state.Settled(*new(T), err)}
}

// Chain returns a Promise that applies the function to the resolved
// value of p. A rejection of p is passed through verbatim without
// calling the function. Like all promises, the returned value is lazy;
// driving it also drives p.
func Chain[T, R any](p *Promise[T], fn func(T) (R, error)) *Promise[R] {
	return NewPromise(func() (R, error) {
		val, err := p.wait()
		if err != nil {
			return *new(R), err
		}
		return fn(val)
	})
}

// Await starts the computation if necessary and blocks until it has
// settled or until the context is canceled. Canceling the context only
// abandons the wait; the computation itself continues.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	p.st.Start()
	select {
	case <-p.st.Done():
	default:
		defer trace.StartRegion(ctx, "promise wait").End()
		select {
		case <-p.st.Done():
		case <-ctx.Done():
			return *new(T), ctx.Err()
		}
	}
	val, err, _ := p.st.Result()
	return val, err
}

// Done starts the computation if necessary and returns a channel that
// is closed once the Promise has settled.
func (p *Promise[T]) Done() <-chan struct{} {
	p.st.Start()
	return p.st.Done()
}

// IsSettled returns true once the outcome of the Promise is known.
func (p *Promise[T]) IsSettled() bool { return p.st.IsSettled() }

// Start begins the computation without waiting for it. It returns the
// receiver for chaining.
func (p *Promise[T]) Start() *Promise[T] {
	p.st.Start()
	return p
}

// Then registers continuations for the outcome of the Promise and
// starts its computation. Exactly one of the continuations is called,
// on a goroutine of its own, once the Promise settles. Either may be
// nil.
//
// The returned Promise settles after the continuation has returned. It
// is rejected with the original error if there is no onRejected
// continuation, or with a [RecoveredError] if a continuation panics.
func (p *Promise[T]) Then(onResolved func(T), onRejected func(error)) *Promise[struct{}] {
	next := state.New(func() (struct{}, error) {
		val, err := p.wait()
		if err != nil {
			if onRejected == nil {
				return struct{}{}, err
			}
			onRejected(err)
			return struct{}{}, nil
		}
		if onResolved != nil {
			onResolved(val)
		}
		return struct{}{}, nil
	})
	p.st.OnSettle(func() { next.Start() })
	p.st.Start()
	return &Promise[struct{}]{st: next}
}

// wait is an uninterruptible version of Await, for use inside other
// computations.
func (p *Promise[T]) wait() (T, error) {
	p.st.Start()
	<-p.st.Done()
	val, err, _ := p.st.Result()
	return val, err
}
