// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// A Mapper transforms one element. It receives the element's position
// in the source and a copy of the complete source.
type Mapper[T, R any] func(ctx context.Context, idx int, item T, all []T) (R, error)

// Map schedules a transformation of every element and returns the
// receiver, so that calls may be chained. The pending computation of
// the Array is replaced by one that waits for the previous computation
// and then calls the mapper once per element, in order, each call
// returning before the next begins. The number and order of elements
// is preserved. An empty Array stays empty without calling the mapper.
//
// The first error returned by the mapper rejects the pending
// computation verbatim and no later element is visited.
//
// See [WithWorkers] for a concurrent variant and [Map] to change the
// element type.
func (a *Array[T]) Map(fn Mapper[T, T], opts ...Option) *Array[T] {
	o := newOp(a.cfg, opMap, opts)
	a.swap(func(prev *Promise[[]T]) *Promise[[]T] {
		return mapPromise(o, prev, fn)
	})
	return a
}

// Map returns a new Array whose elements will be the result of
// applying the mapper to the elements of the source Array. The
// semantics are those of [Array.Map]. The returned Array shares the
// configuration of the source; the source Array is not modified.
func Map[T, R any](a *Array[T], fn Mapper[T, R], opts ...Option) *Array[R] {
	o := newOp(a.cfg, opMap, opts)
	return newArray(a.cfg.Clone(), mapPromise(o, a.Promise(), fn))
}

func mapPromise[T, R any](o *op, prev *Promise[[]T], fn Mapper[T, R]) *Promise[[]R] {
	return NewPromise(func() ([]R, error) {
		items, err := prev.wait()
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return []R{}, nil
		}
		if o.cfg.workers > 1 {
			return mapConcurrent(o, items, fn)
		}
		return mapSequential(o, items, fn)
	})
}

func mapSequential[T, R any](o *op, items []T, fn Mapper[T, R]) ([]R, error) {
	all := slices.Clone(items)
	out := make([]R, len(items))
	err := o.exec(len(items), func(ctx context.Context, r *run) error {
		for idx, item := range items {
			if err := r.step(ctx, idx, func(ctx context.Context) error {
				v, err := fn(ctx, idx, item, all)
				if err != nil {
					return err
				}
				out[idx] = v
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mapConcurrent starts transforms in source order with bounded
// concurrency. Results are assembled by index.
func mapConcurrent[T, R any](o *op, items []T, fn Mapper[T, R]) ([]R, error) {
	all := slices.Clone(items)
	out := make([]R, len(items))
	err := o.exec(len(items), func(ctx context.Context, r *run) error {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(o.cfg.workers)

		var failed atomic.Bool
		for idx, item := range items {
			// Go blocks until a worker is free, so a failure may have
			// been observed while waiting.
			if failed.Load() {
				break
			}
			eg.Go(func() error {
				// A sibling may have failed while this element was
				// waiting for a worker.
				if failed.Load() {
					return nil
				}
				err := r.step(egCtx, idx, func(ctx context.Context) error {
					v, err := fn(ctx, idx, item, all)
					if err != nil {
						return err
					}
					out[idx] = v
					return nil
				})
				if err != nil {
					failed.Store(true)
				}
				return err
			})
		}
		return eg.Wait()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
