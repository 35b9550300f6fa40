// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import "context"

// AwaitMapper adapts a function that returns a [Promise] into a
// [Mapper]. Each returned Promise is awaited before the next element
// is processed. A nil Promise is treated as resolving to the zero
// value.
func AwaitMapper[T, R any](
	fn func(ctx context.Context, idx int, item T, all []T) *Promise[R],
) Mapper[T, R] {
	return func(ctx context.Context, idx int, item T, all []T) (R, error) {
		return awaitOrZero(ctx, fn(ctx, idx, item, all))
	}
}

// AwaitReducer adapts a function that returns a [Promise] into a
// [Reducer]. The next element is not folded until the Promise for the
// previous accumulator has resolved.
func AwaitReducer[T, A any](
	fn func(ctx context.Context, acc A, idx int, item T, all []T) *Promise[A],
) Reducer[T, A] {
	return func(ctx context.Context, acc A, idx int, item T, all []T) (A, error) {
		return awaitOrZero(ctx, fn(ctx, acc, idx, item, all))
	}
}

// AwaitVisitor adapts a function that returns a [Promise] into a
// [Visitor]. The resolved value is discarded.
func AwaitVisitor[T, V any](
	fn func(ctx context.Context, idx int, item T, all []T) *Promise[V],
) Visitor[T] {
	return func(ctx context.Context, idx int, item T, all []T) error {
		_, err := awaitOrZero(ctx, fn(ctx, idx, item, all))
		return err
	}
}

func awaitOrZero[T any](ctx context.Context, p *Promise[T]) (T, error) {
	if p == nil {
		return *new(T), nil
	}
	return p.Await(ctx)
}
