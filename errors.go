// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"errors"

	"vawter.tech/asyncarray/internal/safe"
)

// ErrEmptyReduce is the rejection reason of [Array.Reduce] when the
// Array has no elements. Like its synchronous counterpart, it signals
// a programming error; use [Fold] to supply an initial value.
var ErrEmptyReduce = errors.New("reduce of empty array with no initial value")

// A RecoveredError is returned when a callback panics. If the panic
// value implements error, it is available via [errors.Unwrap].
type RecoveredError = safe.RecoveredError
