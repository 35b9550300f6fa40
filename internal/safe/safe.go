// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package safe runs user-provided callbacks, converting panics into
// errors that carry the stack of the panicking goroutine.
package safe

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const captureDepth = 32

// A RecoveredError associates a recovered panic value with a stack
// trace.
type RecoveredError struct {
	Err   error
	Stack []uintptr
}

// Error implements error.
func (e *RecoveredError) Error() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "recovered: %v\n", e.Err)
	frames := runtime.CallersFrames(e.Stack)
	for {
		frame, more := frames.Next()
		_, _ = fmt.Fprintf(&sb, "%s ( %s:%d )\n", frame.Function, frame.File, frame.Line)
		if !more {
			return sb.String()
		}
	}
}

// String is for debugging use only.
func (e *RecoveredError) String() string { return e.Error() }

// Unwrap returns the enclosed error.
func (e *RecoveredError) Unwrap() error { return e.Err }

// Run executes the callback. A panic is returned as a
// [RecoveredError].
func Run(fn func() error) error {
	_, err := Invoke(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Invoke executes the callback, returning its result. Errors returned
// by the callback are passed through untouched so that callers may
// compare them by identity.
func Invoke[R any](fn func() (R, error)) (ret R, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ret = *new(R)
		err = recovered(err, r)
	}()
	return fn()
}

// recovered builds the RecoveredError. It must be called from the
// deferred function so that the captured stack begins at the panic.
func recovered(prior error, r any) error {
	var cause error
	if e, ok := r.(error); ok {
		cause = e
	} else {
		cause = fmt.Errorf("panic: %v", r)
	}
	stack := make([]uintptr, captureDepth)
	stack = stack[:runtime.Callers(3, stack)]
	if prior != nil {
		cause = errors.Join(prior, cause)
	}
	return &RecoveredError{
		Err:   cause,
		Stack: stack,
	}
}
