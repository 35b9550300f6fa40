// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"vawter.tech/asyncarray"
)

// TestLoopCustomRetryable verifies that the Retryable predicate
// controls which errors are retried and which are returned immediately.
func TestLoopCustomRetryable(t *testing.T) {
	r := require.New(t)

	permanent := errors.New("permanent")
	l := &Loop{
		MaxAttempts: 5,
		Retryable: func(err error) bool {
			return !errors.Is(err, permanent)
		},
	}

	attempts := 0
	_, err := reduceWith(t, l.Middleware(), func(int, int) (int, error) {
		attempts++
		return 0, permanent
	})
	r.Same(permanent, err)
	r.Equal(1, attempts)

	// A non-permanent error should be retried.
	transient := errors.New("transient")
	attempts = 0
	sum, err := reduceWith(t, l.Middleware(), func(acc, item int) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, transient
		}
		return acc + item, nil
	})
	r.NoError(err)
	r.Equal(6, sum)
	r.Equal(4, attempts)
}

// TestLoopDefaults verifies that a zero-value Loop makes two attempts
// and retries all errors.
func TestLoopDefaults(t *testing.T) {
	r := require.New(t)

	l := &Loop{}

	stepErr := errors.New("always fails")
	attempts := 0
	_, err := reduceWith(t, l.Middleware(), func(int, int) (int, error) {
		attempts++
		return 0, stepErr
	})
	r.Equal(2, attempts)
	r.ErrorIs(err, stepErr)
	var maxErr *MaxAttemptsError
	r.ErrorAs(err, &maxErr)
	r.Equal(2, maxErr.Attempts)
	r.Equal(1, maxErr.Index)
	r.EqualError(err, "element 1: max attempts (2) reached: always fails")
}

// TestLoopMaxAttemptsOne verifies that MaxAttempts=1 means the callback
// is tried exactly once with no retries.
func TestLoopMaxAttemptsOne(t *testing.T) {
	r := require.New(t)

	l := &Loop{MaxAttempts: 1}

	stepErr := errors.New("fail")
	attempts := 0
	_, err := reduceWith(t, l.Middleware(), func(int, int) (int, error) {
		attempts++
		return 0, stepErr
	})
	r.Equal(1, attempts)
	r.ErrorIs(err, stepErr)
	var maxErr *MaxAttemptsError
	r.ErrorAs(err, &maxErr)
	r.Equal(1, maxErr.Attempts)
}

// TestLoopIndependentState verifies that every element gets independent
// retry state.
func TestLoopIndependentState(t *testing.T) {
	r := require.New(t)

	l := &Loop{MaxAttempts: 2}

	// Every element fails once; with shared state the second element
	// would exceed the limit.
	attempts := map[int]int{}
	got, err := asyncarray.Of(t.Context(), 1, 2, 3).Map(
		func(_ context.Context, _ int, item int, _ []int) (int, error) {
			attempts[item]++
			if attempts[item] == 1 {
				return 0, errors.New("fail once")
			}
			return -item, nil
		},
		asyncarray.WithMiddleware(l.Middleware()),
	).Await(t.Context())
	r.NoError(err)
	r.Equal([]int{-1, -2, -3}, got)
	r.Equal(map[int]int{1: 2, 2: 2, 3: 2}, attempts)
}

// TestMaxAttemptsOutsideStep verifies the message when no element is
// associated with the context.
func TestMaxAttemptsOutsideStep(t *testing.T) {
	r := require.New(t)

	err := maxAttempts(t.Context(), 3, errors.New("nope"))
	var maxErr *MaxAttemptsError
	r.ErrorAs(err, &maxErr)
	r.Equal(-1, maxErr.Index)
	r.EqualError(err, "max attempts (3) reached: nope")
}
