// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func double(_ context.Context, _ int, item int, _ []int) (int, error) {
	return item * 2, nil
}

func TestMap(t *testing.T) {
	r := require.New(t)

	var indices []int
	arr := Of(t.Context(), 1, 2, 3, 4, 5)
	r.Same(arr, arr.Map(func(ctx context.Context, idx int, item int, all []int) (int, error) {
		indices = append(indices, idx)
		r.Equal([]int{1, 2, 3, 4, 5}, all)
		return double(ctx, idx, item, all)
	}))

	got, err := arr.Await(t.Context())
	r.NoError(err)
	r.Equal([]int{2, 4, 6, 8, 10}, got)
	r.Equal([]int{0, 1, 2, 3, 4}, indices)
}

func TestMapEmpty(t *testing.T) {
	r := require.New(t)

	calls := 0
	got, err := Of[int](t.Context()).Map(func(context.Context, int, int, []int) (int, error) {
		calls++
		return 0, nil
	}).Await(t.Context())
	r.NoError(err)
	r.Empty(got)
	r.Zero(calls)
}

func TestMapChained(t *testing.T) {
	r := require.New(t)

	got, err := Of(t.Context(), 1, 2, 3).
		Map(double).
		Map(func(_ context.Context, _ int, item int, _ []int) (int, error) {
			return item + 1, nil
		}).
		Await(t.Context())
	r.NoError(err)
	r.Equal([]int{3, 5, 7}, got)
}

// TestMapAwaitsEachStep verifies that a slow transform of an early
// element completes before a later one starts.
func TestMapAwaitsEachStep(t *testing.T) {
	r := require.New(t)

	var mu sync.Mutex
	var events []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, s)
	}

	got, err := Map(Of(t.Context(), 1, 2, 3), AwaitMapper(
		func(_ context.Context, idx int, item int, _ []int) *Promise[string] {
			return NewPromise(func() (string, error) {
				record("start " + strconv.Itoa(idx))
				time.Sleep(time.Duration(3-idx) * 5 * time.Millisecond)
				record("end " + strconv.Itoa(idx))
				return strconv.Itoa(item), nil
			})
		})).Await(t.Context())
	r.NoError(err)
	r.Equal([]string{"1", "2", "3"}, got)
	r.Equal([]string{
		"start 0", "end 0",
		"start 1", "end 1",
		"start 2", "end 2",
	}, events)
}

func TestMapChangesType(t *testing.T) {
	r := require.New(t)

	src := Of(t.Context(), 1, 22, 333)
	lens := Map(Map(src, func(_ context.Context, _ int, item int, _ []int) (string, error) {
		return strconv.Itoa(item), nil
	}), func(_ context.Context, _ int, item string, _ []string) (int, error) {
		return len(item), nil
	})

	got, err := lens.Await(t.Context())
	r.NoError(err)
	r.Equal([]int{1, 2, 3}, got)

	// The source is unaffected.
	orig, err := src.Await(t.Context())
	r.NoError(err)
	r.Equal([]int{1, 22, 333}, orig)
}

func TestMapShortCircuits(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	calls := 0
	arr := Of(t.Context(), 1, 2, 3, 4, 5).Map(func(_ context.Context, idx int, item int, _ []int) (int, error) {
		calls++
		if idx == 2 {
			return 0, boom
		}
		return item, nil
	})

	_, err := arr.Await(t.Context())
	r.Same(boom, err)
	r.Equal(3, calls)

	// Later operations observe the same rejection without calling
	// their callbacks.
	visited := false
	_, err = arr.ForEach(func(context.Context, int, int, []int) error {
		visited = true
		return nil
	}).Await(t.Context())
	r.Same(boom, err)
	r.False(visited)
	r.Equal(3, calls)
}

func TestMapPanic(t *testing.T) {
	r := require.New(t)

	_, err := Of(t.Context(), "a").Map(func(context.Context, int, string, []string) (string, error) {
		panic(errors.New("kaboom"))
	}).Await(t.Context())
	var rec *RecoveredError
	r.ErrorAs(err, &rec)
	r.EqualError(errors.Unwrap(err), "kaboom")
	r.NotEmpty(rec.Stack)
}

func TestMapIsLazy(t *testing.T) {
	r := require.New(t)

	var calls atomic.Int32
	arr := Of(t.Context(), 1, 2, 3).Map(func(_ context.Context, _ int, item int, _ []int) (int, error) {
		calls.Add(1)
		return item, nil
	})
	time.Sleep(10 * time.Millisecond)
	r.Zero(calls.Load())

	n, err := arr.Len(t.Context())
	r.NoError(err)
	r.Equal(3, n)
	r.Equal(int32(3), calls.Load())

	// Awaiting again does not repeat the transform.
	_, err = arr.Await(t.Context())
	r.NoError(err)
	r.Equal(int32(3), calls.Load())
}

func TestMapConcurrent(t *testing.T) {
	r := require.New(t)

	const count = 32
	items := make([]int, count)
	for i := range items {
		items[i] = i
	}

	var running, peak atomic.Int32
	got, err := New(t.Context(), items).Map(func(_ context.Context, _ int, item int, _ []int) (int, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)
		return item * 2, nil
	}, WithWorkers(4)).Await(t.Context())
	r.NoError(err)
	r.Len(got, count)
	for i, v := range got {
		r.Equal(i*2, v)
	}
	r.LessOrEqual(peak.Load(), int32(4))
}

func TestMapConcurrentShortCircuits(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	var failed atomic.Bool
	var mu sync.Mutex
	var late []int
	_, err := Of(t.Context(), 0, 1, 2, 3).Map(
		func(ctx context.Context, idx int, item int, _ []int) (int, error) {
			if failed.Load() {
				mu.Lock()
				late = append(late, idx)
				mu.Unlock()
			}
			switch idx {
			case 0:
				time.Sleep(20 * time.Millisecond)
				failed.Store(true)
				return 0, boom
			case 1:
				// Holds its worker until the failure cancels it.
				<-ctx.Done()
				return 0, ctx.Err()
			default:
				return item, nil
			}
		}, WithWorkers(2)).Await(t.Context())
	r.Same(boom, err)

	// Nothing is started in the background either.
	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	r.Empty(late)
}

// Canceling the binding does not drop elements from a concurrent map.
func TestMapConcurrentCanceledBinding(t *testing.T) {
	r := require.New(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	got, err := Of(ctx, 1, 2, 3, 4, 5).Map(double, WithWorkers(2)).Await(t.Context())
	r.NoError(err)
	r.Equal([]int{2, 4, 6, 8, 10}, got)
}
