// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"

	"vawter.tech/asyncarray"
)

// Loop invokes the callback for an element again as soon as it fails.
// Each element has its own attempt budget, so a flaky element early in
// the Array does not reduce the attempts available to later ones.
type Loop struct {
	MaxAttempts int              // Invocations per element. Defaults to 2.
	Retryable   func(error) bool // Defaults to retrying all errors.
}

// Middleware returns an [asyncarray.Middleware] that retries failing
// elements without delay. A non-retryable error fails the operation
// verbatim; exhausting the attempts fails it with a
// [MaxAttemptsError].
func (l *Loop) Middleware() asyncarray.Middleware {
	limit := l.MaxAttempts
	if limit == 0 {
		limit = 2
	}
	retryable := l.Retryable
	if retryable == nil {
		retryable = func(error) bool { return true }
	}
	return Middleware(func(ctx context.Context, attempts *int, err error) (<-chan struct{}, error) {
		if !retryable(err) {
			return nil, err
		}
		*attempts++
		if *attempts >= limit {
			return nil, maxAttempts(ctx, *attempts, err)
		}
		now := make(chan struct{}, 1)
		now <- struct{}{}
		return now, nil
	})
}
