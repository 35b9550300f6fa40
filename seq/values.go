// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package seq

import (
	"context"
	"iter"

	"vawter.tech/asyncarray"
)

// Values returns a sequence that awaits the source and then yields
// each element with a nil error. If the source is rejected, a single
// zero value is yielded with the error.
func Values[T any](ctx context.Context, src asyncarray.Awaitable[[]T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		items, err := src.Await(ctx)
		if err != nil {
			yield(*new(T), err)
			return
		}
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// All returns a sequence that awaits the source and then yields each
// element with its index. A rejected source yields nothing; use
// [Values] when the error must be observed.
func All[T any](ctx context.Context, src asyncarray.Awaitable[[]T]) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		items, err := src.Await(ctx)
		if err != nil {
			return
		}
		for idx, item := range items {
			if !yield(idx, item) {
				return
			}
		}
	}
}
