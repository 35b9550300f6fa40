// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"slices"
)

// A Visitor is called for its side effects on one element.
type Visitor[T any] func(ctx context.Context, idx int, item T, all []T) error

// ForEach returns a Promise that calls the visitor once per element,
// in order, each call returning before the next begins. The visitor
// is not called until the Promise is driven; the Promise resolves once
// every call has returned. An empty Array resolves immediately without
// calling the visitor.
//
// The first error returned by the visitor rejects the Promise verbatim
// and no later element is visited. ForEach does not modify the Array.
func (a *Array[T]) ForEach(fn Visitor[T], opts ...Option) *Promise[struct{}] {
	o := newOp(a.cfg, opForEach, opts)
	prev := a.Promise()
	return NewPromise(func() (struct{}, error) {
		items, err := prev.wait()
		if err != nil || len(items) == 0 {
			return struct{}{}, err
		}
		all := slices.Clone(items)
		return struct{}{}, o.exec(len(items), func(ctx context.Context, r *run) error {
			for idx, item := range items {
				if err := r.step(ctx, idx, func(ctx context.Context) error {
					return fn(ctx, idx, item, all)
				}); err != nil {
					return err
				}
			}
			return nil
		})
	})
}
