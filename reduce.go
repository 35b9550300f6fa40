// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"slices"
)

// A Reducer folds one element into the accumulator. It receives the
// element's position in the source and a copy of the complete source;
// modifying that copy has no effect on the reduction.
type Reducer[T, A any] func(ctx context.Context, acc A, idx int, item T, all []T) (A, error)

// Reduce returns a Promise for the left-to-right fold of the elements,
// using the first element as the initial accumulator. Each call to the
// reducer returns before the next begins.
//
// If the Array is empty, the Promise is rejected with [ErrEmptyReduce].
// If it holds a single element, the Promise resolves to that element
// without calling the reducer. The first error returned by the reducer
// rejects the Promise verbatim and no later element is visited.
//
// Reduce reads the pending computation that is current at the time of
// the call and does not modify the Array.
func (a *Array[T]) Reduce(fn Reducer[T, T], opts ...Option) *Promise[T] {
	o := newOp(a.cfg, opReduce, opts)
	prev := a.Promise()
	return NewPromise(func() (T, error) {
		items, err := prev.wait()
		if err != nil {
			return *new(T), err
		}
		if len(items) == 0 {
			return *new(T), ErrEmptyReduce
		}
		return fold(o, items, items[0], 1, fn)
	})
}

// Fold returns a Promise for the left-to-right fold of the elements of
// the Array, starting from the seed. Each call to the reducer returns
// before the next begins. An empty Array resolves to the seed without
// calling the reducer.
//
// The first error returned by the reducer rejects the Promise verbatim
// and no later element is visited. Fold does not modify the Array.
func Fold[T, A any](a *Array[T], seed A, fn Reducer[T, A], opts ...Option) *Promise[A] {
	o := newOp(a.cfg, opReduce, opts)
	prev := a.Promise()
	return NewPromise(func() (A, error) {
		items, err := prev.wait()
		if err != nil {
			return *new(A), err
		}
		return fold(o, items, seed, 0, fn)
	})
}

// fold applies the reducer to items[from:].
func fold[T, A any](o *op, items []T, acc A, from int, fn Reducer[T, A]) (A, error) {
	all := slices.Clone(items)
	err := o.exec(len(items), func(ctx context.Context, r *run) error {
		for idx := from; idx < len(items); idx++ {
			item := items[idx]
			if err := r.step(ctx, idx, func(ctx context.Context) error {
				next, err := fn(ctx, acc, idx, item, all)
				if err != nil {
					return err
				}
				acc = next
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return *new(A), err
	}
	return acc, nil
}
