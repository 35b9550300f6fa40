// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import "context"

// Visitable is the set of function signatures accepted by [Visit].
type Visitable[T any] interface {
	func(T) | func(T) error |
		func(context.Context, T) | func(context.Context, T) error |
		Visitor[T]
}

// Visit adapts various function signatures to a [Visitor]. The type
// of element must be given explicitly:
//
//	arr.ForEach(asyncarray.Visit[string](func(s string) { ... }))
func Visit[T any, F Visitable[T]](fn F) Visitor[T] {
	a := any(fn)
	switch t := a.(type) {
	case func(T):
		return func(_ context.Context, _ int, item T, _ []T) error {
			t(item)
			return nil
		}
	case func(T) error:
		return func(_ context.Context, _ int, item T, _ []T) error {
			return t(item)
		}
	case func(context.Context, T):
		return func(ctx context.Context, _ int, item T, _ []T) error {
			t(ctx, item)
			return nil
		}
	case func(context.Context, T) error:
		return func(ctx context.Context, _ int, item T, _ []T) error {
			return t(ctx, item)
		}
	}
	return a.(Visitor[T])
}

// Transformable is the set of function signatures accepted by
// [Transform].
type Transformable[T, R any] interface {
	func(T) R | func(T) (R, error) |
		func(context.Context, T) R | func(context.Context, T) (R, error) |
		Mapper[T, R]
}

// Transform adapts various function signatures to a [Mapper]. The
// types of the source and resulting elements must be given explicitly:
//
//	asyncarray.Map(arr, asyncarray.Transform[string, int](strconv.Atoi))
func Transform[T, R any, F Transformable[T, R]](fn F) Mapper[T, R] {
	a := any(fn)
	switch t := a.(type) {
	case func(T) R:
		return func(_ context.Context, _ int, item T, _ []T) (R, error) {
			return t(item), nil
		}
	case func(T) (R, error):
		return func(_ context.Context, _ int, item T, _ []T) (R, error) {
			return t(item)
		}
	case func(context.Context, T) R:
		return func(ctx context.Context, _ int, item T, _ []T) (R, error) {
			return t(ctx, item), nil
		}
	case func(context.Context, T) (R, error):
		return func(ctx context.Context, _ int, item T, _ []T) (R, error) {
			return t(ctx, item)
		}
	}
	return a.(Mapper[T, R])
}
