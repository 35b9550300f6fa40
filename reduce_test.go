// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sum(_ context.Context, acc int, _ int, item int, _ []int) (int, error) {
	return acc + item, nil
}

// spyReducer records every call and delegates to the reducer.
type spyReducer[T, A any] struct {
	calls []int
	fn    Reducer[T, A]
}

func (s *spyReducer[T, A]) reduce(ctx context.Context, acc A, idx int, item T, all []T) (A, error) {
	s.calls = append(s.calls, idx)
	return s.fn(ctx, acc, idx, item, all)
}

func TestFoldMatchesSynchronousReduce(t *testing.T) {
	for _, items := range [][]int{
		{1},
		{1, 2, 3, 4, 5},
		{-3, 7, 0, 12},
		{42, 42, 42, 42, 42, 42, 42, 42},
	} {
		t.Run(fmt.Sprint(items), func(t *testing.T) {
			r := require.New(t)

			expected := 0
			for _, v := range items {
				expected += v
			}

			// Each step returns a promise that resolves after a random
			// delay, so a reducer that didn't wait would observe a
			// stale accumulator.
			reducer := AwaitReducer(func(_ context.Context, acc int, _ int, item int, _ []int) *Promise[int] {
				return NewPromise(func() (int, error) {
					time.Sleep(time.Duration(rand.IntN(3)) * time.Millisecond)
					return acc + item, nil
				})
			})

			got, err := Fold(Of(t.Context(), items...), 0, reducer).Await(t.Context())
			r.NoError(err)
			r.Equal(expected, got)

			got, err = Of(t.Context(), items...).Reduce(reducer).Await(t.Context())
			r.NoError(err)
			r.Equal(expected, got)
		})
	}
}

func TestReduceEmptyWithoutSeed(t *testing.T) {
	r := require.New(t)

	spy := &spyReducer[int, int]{fn: sum}
	_, err := Of[int](t.Context()).Reduce(spy.reduce).Await(t.Context())
	r.ErrorIs(err, ErrEmptyReduce)
	r.Empty(spy.calls)
}

func TestReduceSingleton(t *testing.T) {
	r := require.New(t)

	spy := &spyReducer[string, string]{
		fn: func(context.Context, string, int, string, []string) (string, error) {
			return "wrong", nil
		},
	}
	got, err := Of(t.Context(), "only").Reduce(spy.reduce).Await(t.Context())
	r.NoError(err)
	r.Equal("only", got)
	r.Empty(spy.calls)
}

func TestReduceSeedsWithFirstElement(t *testing.T) {
	r := require.New(t)

	var accs []string
	got, err := Of(t.Context(), "a", "b", "c").Reduce(
		func(_ context.Context, acc string, idx int, item string, all []string) (string, error) {
			accs = append(accs, acc)
			r.Equal(item, all[idx])
			return acc + item, nil
		}).Await(t.Context())
	r.NoError(err)
	r.Equal("abc", got)
	r.Equal([]string{"a", "ab"}, accs)
}

func TestFoldEmpty(t *testing.T) {
	r := require.New(t)

	type unique struct{ v int }
	seed := &unique{v: 1}
	spy := &spyReducer[int, *unique]{
		fn: func(context.Context, *unique, int, int, []int) (*unique, error) {
			return nil, nil
		},
	}
	got, err := Fold(New[int](t.Context(), nil), seed, spy.reduce).Await(t.Context())
	r.NoError(err)
	r.Same(seed, got)
	r.Empty(spy.calls)
}

func TestFoldVisitsEveryElement(t *testing.T) {
	r := require.New(t)

	spy := &spyReducer[int, []int]{
		fn: func(_ context.Context, acc []int, _ int, item int, _ []int) ([]int, error) {
			return append(acc, item*item), nil
		},
	}
	got, err := Fold(Of(t.Context(), 1, 2, 3), []int(nil), spy.reduce).Await(t.Context())
	r.NoError(err)
	r.Equal([]int{1, 4, 9}, got)
	r.Equal([]int{0, 1, 2}, spy.calls)
}

// A zero seed is still a seed.
func TestFoldZeroSeed(t *testing.T) {
	r := require.New(t)

	spy := &spyReducer[int, int]{fn: sum}
	got, err := Fold(Of(t.Context(), 5), 0, spy.reduce).Await(t.Context())
	r.NoError(err)
	r.Equal(5, got)
	r.Equal([]int{0}, spy.calls)
}

func TestReduceShortCircuits(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	spy := &spyReducer[int, int]{
		fn: func(_ context.Context, acc int, idx int, item int, _ []int) (int, error) {
			if idx == 2 {
				return 0, boom
			}
			return acc + item, nil
		},
	}
	_, err := Fold(Of(t.Context(), 1, 2, 3, 4, 5), 0, spy.reduce).Await(t.Context())
	r.Same(boom, err)
	r.Equal([]int{0, 1, 2}, spy.calls)
}

func TestReducePanic(t *testing.T) {
	r := require.New(t)

	calls := 0
	_, err := Of(t.Context(), 1, 2, 3).Reduce(
		func(context.Context, int, int, int, []int) (int, error) {
			calls++
			panic("yikes")
		}).Await(t.Context())
	var rec *RecoveredError
	r.ErrorAs(err, &rec)
	r.ErrorContains(err, "yikes")
	r.Equal(1, calls)
}

// TestReduceSnapshot verifies that the reducer cannot disturb the
// elements being folded or the Array itself.
func TestReduceSnapshot(t *testing.T) {
	r := require.New(t)

	arr := Of(t.Context(), 1, 2, 3)
	got, err := Fold(arr, 0, func(_ context.Context, acc int, idx int, item int, all []int) (int, error) {
		// Clobber the view of later elements.
		for i := range all {
			all[i] = 100
		}
		return acc + item, nil
	}).Await(t.Context())
	r.NoError(err)
	r.Equal(6, got)

	items, err := arr.Await(t.Context())
	r.NoError(err)
	r.Equal([]int{1, 2, 3}, items)
}

// TestReduceReadsCurrentPending verifies that a reduction observes the
// Map calls issued before it, but not those issued after.
func TestReduceReadsCurrentPending(t *testing.T) {
	r := require.New(t)

	arr := Of(t.Context(), 1, 2, 3)
	before := Fold(arr, 0, sum)
	arr.Map(double)
	after := Fold(arr, 0, sum)

	got, err := after.Await(t.Context())
	r.NoError(err)
	r.Equal(12, got)

	got, err = before.Await(t.Context())
	r.NoError(err)
	r.Equal(6, got)
}

func TestReduceIsLazy(t *testing.T) {
	r := require.New(t)

	spy := &spyReducer[int, int]{fn: sum}
	p := Of(t.Context(), 1, 2, 3).Reduce(spy.reduce)
	time.Sleep(10 * time.Millisecond)
	r.False(p.IsSettled())
	r.Empty(spy.calls)

	got, err := p.Await(t.Context())
	r.NoError(err)
	r.Equal(6, got)
	r.Equal([]int{1, 2}, spy.calls)
}

func TestReduceRejectedSource(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	spy := &spyReducer[int, int]{fn: sum}
	_, err := From(t.Context(), Rejected[[]int](boom)).Reduce(spy.reduce).Await(t.Context())
	r.Same(boom, err)
	r.Empty(spy.calls)
}
