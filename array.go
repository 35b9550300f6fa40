// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// An Array wraps a sequence of elements and the single pending
// computation that will produce them.
//
// Every call to [Array.Map] replaces the pending computation with a new
// one that is chained after it, so operations issued before an earlier
// one has finished are queued behind it rather than run against stale
// elements. Reductions and [Array.ForEach] read the pending computation
// that is current at the time of the call and never modify the Array.
//
// No callback is invoked until a result is awaited, either through
// [Array.Await], [Array.Then], or the [Promise] returned by an
// operation.
//
// All methods on an Array are safe for concurrent use.
type Array[T any] struct {
	cfg *config

	mu struct {
		sync.Mutex
		pending *Promise[[]T]
	}
}

var _ Awaitable[[]int] = (*Array[int])(nil)

// New returns an Array holding a copy of the items. Callbacks are
// bound to the context unless [Bind] is used.
func New[T any](ctx context.Context, items []T, opts ...Option) *Array[T] {
	return newArray(newConfig(nil, withBind(ctx, opts)),
		Resolved(slices.Clone(items)))
}

// Of returns an Array holding the given elements.
func Of[T any](ctx context.Context, items ...T) *Array[T] {
	return New(ctx, items)
}

// From returns an Array that adopts the eventual result of another
// asynchronous computation. The source is awaited when the Array is
// first driven; a failure of the source becomes the failure of the
// Array. Canceling the bound context does not abandon the source.
func From[T any](ctx context.Context, src Awaitable[[]T], opts ...Option) *Array[T] {
	cfg := newConfig(nil, withBind(ctx, opts))
	return newArray(cfg, NewPromise(func() ([]T, error) {
		items, err := src.Await(context.WithoutCancel(cfg.bind))
		if err != nil {
			return nil, err
		}
		return slices.Clone(items), nil
	}))
}

// FromMapped adopts the eventual result of another asynchronous
// computation and immediately schedules a [Map] of its elements.
func FromMapped[S, T any](
	ctx context.Context, src Awaitable[[]S], fn Mapper[S, T], opts ...Option,
) *Array[T] {
	return Map(From(ctx, src, opts...), fn)
}

func newArray[T any](cfg *config, pending *Promise[[]T]) *Array[T] {
	ret := &Array[T]{cfg: cfg}
	ret.mu.pending = pending
	return ret
}

// withBind prepends a Bind option so that an explicit Bind in opts
// takes precedence over the constructor's context.
func withBind(ctx context.Context, opts []Option) []Option {
	if ctx == nil {
		return opts
	}
	return append([]Option{Bind(ctx)}, opts...)
}

// Await drives the pending computation and returns a copy of the
// resulting elements.
func (a *Array[T]) Await(ctx context.Context) ([]T, error) {
	items, err := a.Promise().Await(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

// Len drives the pending computation and returns the number of
// elements.
func (a *Array[T]) Len(ctx context.Context) (int, error) {
	items, err := a.Promise().Await(ctx)
	return len(items), err
}

// Promise returns the pending computation that is current at the time
// of the call. The slice it resolves to is shared and must not be
// modified.
func (a *Array[T]) Promise() *Promise[[]T] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mu.pending
}

// Then registers continuations on the current pending computation. See
// [Promise.Then]. The elements passed to onResolved are a copy. A panic
// in either continuation is logged at error level.
func (a *Array[T]) Then(onResolved func([]T), onRejected func(error)) *Promise[struct{}] {
	var wrapped func([]T)
	if onResolved != nil {
		wrapped = func(items []T) { onResolved(slices.Clone(items)) }
	}
	prev := a.Promise()
	next := prev.Then(wrapped, onRejected)
	next.st.OnSettle(func() {
		_, err, _ := next.st.Result()
		if _, prevErr, _ := prev.st.Result(); errors.Is(err, prevErr) {
			return
		}
		if rec := (*RecoveredError)(nil); errors.As(err, &rec) {
			a.cfg.logger.Error().
				Err(rec.Err).
				Str("name", a.cfg.name).
				Msg("continuation panicked")
		}
	})
	return next
}

// swap replaces the pending computation with one chained after it.
func (a *Array[T]) swap(fn func(prev *Promise[[]T]) *Promise[[]T]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mu.pending = fn(a.mu.pending)
}
