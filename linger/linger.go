// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package linger contains a utility for reporting on callbacks that
// have not returned.
package linger

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"vawter.tech/asyncarray"
)

// NewRecorder constructs a [Recorder].
func NewRecorder() *Recorder {
	return &Recorder{}
}

// A Recorder can be attached to an [asyncarray.Array] with
// [asyncarray.WithMiddleware] to track the callbacks that are currently
// executing. It is primarily useful in tests, to ensure that no
// callback is left running after the result of an operation has been
// abandoned.
type Recorder struct {
	counter atomic.Uint64
	data    sync.Map
}

// Middleware is an [asyncarray.Middleware] that records every step
// until its Invoker has returned.
func (r *Recorder) Middleware(ctx context.Context) (context.Context, asyncarray.Invoker) {
	info, ok := asyncarray.StepInfoFrom(ctx)
	if !ok {
		return ctx, asyncarray.InvokerCall
	}
	id := r.counter.Add(1)
	r.data.Store(id, info)

	return ctx, func(ctx context.Context, step asyncarray.Step) error {
		defer r.data.Delete(id)
		return step(ctx)
	}
}

// Running returns a snapshot of the steps that are currently executing,
// ordered by the time at which they were recorded.
func (r *Recorder) Running() []*asyncarray.StepInfo {
	type entry struct {
		id   uint64
		info *asyncarray.StepInfo
	}
	var found []entry
	r.data.Range(func(key, value any) bool {
		found = append(found, entry{key.(uint64), value.(*asyncarray.StepInfo)})
		return true
	})
	slices.SortFunc(found, func(a, b entry) int {
		return cmp.Compare(a.id, b.id)
	})
	ret := make([]*asyncarray.StepInfo, len(found))
	for idx, e := range found {
		ret[idx] = e.info
	}
	return ret
}
