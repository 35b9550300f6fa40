// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package state defines the single-assignment cell that backs a
// promise.
package state

import (
	"sync"

	"vawter.tech/asyncarray/internal/safe"
)

// A State holds the eventual outcome of a deferred computation. The
// computation is executed at most once, in its own goroutine, when
// [State.Start] is first called.
type State[T any] struct {
	done chan struct{}

	mu struct {
		sync.Mutex
		err     error
		hooks   []func() // Invoked once, outside the mutex, after settling.
		run     func() (T, error)
		settled bool
		started bool
		val     T
	}
}

// New returns a State that will execute the function when started.
func New[T any](run func() (T, error)) *State[T] {
	ret := &State[T]{done: make(chan struct{})}
	ret.mu.run = run
	return ret
}

// Settled returns a State that already holds an outcome.
func Settled[T any](val T, err error) *State[T] {
	ret := &State[T]{done: make(chan struct{})}
	ret.mu.started = true
	ret.settle(val, err)
	return ret
}

// Done returns a channel that is closed once the State has settled. It
// does not start the computation.
func (s *State[T]) Done() <-chan struct{} { return s.done }

// IsSettled returns true once an outcome is available.
func (s *State[T]) IsSettled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mu.settled
}

// IsStarted returns true once [State.Start] has been called.
func (s *State[T]) IsStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mu.started
}

// OnSettle registers a hook to be called after the State settles. The
// hook is invoked immediately if the outcome is already known. Hooks
// run in registration order on the settling goroutine and must not
// block.
func (s *State[T]) OnSettle(fn func()) {
	s.mu.Lock()
	if !s.mu.settled {
		s.mu.hooks = append(s.mu.hooks, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// Result returns the outcome. The boolean will be false if the State
// has not yet settled.
func (s *State[T]) Result() (val T, err error, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mu.settled {
		return val, nil, false
	}
	return s.mu.val, s.mu.err, true
}

// Start launches the computation if it has not already been started.
// It returns true if this call performed the launch.
func (s *State[T]) Start() bool {
	s.mu.Lock()
	if s.mu.started {
		s.mu.Unlock()
		return false
	}
	s.mu.started = true
	run := s.mu.run
	s.mu.run = nil
	s.mu.Unlock()

	go func() {
		// We don't execute user code while holding a mutex.
		s.settle(safe.Invoke(run))
	}()
	return true
}

// settle is a one-shot method to record the outcome.
func (s *State[T]) settle(val T, err error) {
	s.mu.Lock()
	if s.mu.settled {
		// Implementation error, not user problem.
		s.mu.Unlock()
		panic("settled twice")
	}
	s.mu.settled = true
	s.mu.val = val
	s.mu.err = err
	hooks := s.mu.hooks
	s.mu.hooks = nil
	close(s.done)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
