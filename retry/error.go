// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"fmt"

	"vawter.tech/asyncarray"
)

// MaxAttemptsError fails an operation when the callback for one element
// kept failing until its attempts were exhausted. The error from the
// final attempt is available via [errors.Unwrap].
type MaxAttemptsError struct {
	Attempts int   // The number of times the callback was invoked.
	Err      error // The error from the final attempt.
	Index    int   // The element's position, or -1 if unknown.
}

// maxAttempts builds the error for the element of the step being
// retried.
func maxAttempts(ctx context.Context, attempts int, err error) error {
	idx := -1
	if info, ok := asyncarray.StepInfoFrom(ctx); ok {
		idx = info.Index
	}
	return &MaxAttemptsError{Attempts: attempts, Err: err, Index: idx}
}

// Error implements error.
func (e *MaxAttemptsError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("max attempts (%d) reached: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("element %d: max attempts (%d) reached: %v", e.Index, e.Attempts, e.Err)
}

// Unwrap returns the enclosed error.
func (e *MaxAttemptsError) Unwrap() error {
	return e.Err
}
