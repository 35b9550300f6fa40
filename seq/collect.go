// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package seq

import (
	"context"
	"iter"
	"slices"

	"vawter.tech/asyncarray"
)

// Collect returns an Array that will hold the elements of the
// sequence. The sequence is consumed once, when the Array is first
// driven.
func Collect[T any](ctx context.Context, items iter.Seq[T], opts ...asyncarray.Option) *asyncarray.Array[T] {
	return asyncarray.From(ctx, asyncarray.NewPromise(func() ([]T, error) {
		return slices.Collect(items), nil
	}), opts...)
}

// CollectErr returns an Array that will hold the values of a sequence
// of value-error pairs, such as the one returned by [Values]. The first
// non-nil error rejects the Array and stops the sequence.
func CollectErr[T any](ctx context.Context, items iter.Seq2[T, error], opts ...asyncarray.Option) *asyncarray.Array[T] {
	return asyncarray.From(ctx, asyncarray.NewPromise(func() ([]T, error) {
		var ret []T
		for item, err := range items {
			if err != nil {
				return nil, err
			}
			ret = append(ret, item)
		}
		return ret, nil
	}), opts...)
}
