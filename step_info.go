// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

type stepInfoKey struct{}

// A StepInfo can be retrieved via [StepInfoFrom] by [Middleware] or by
// callbacks to be used as observability data.
type StepInfo struct {
	Done    <-chan struct{}       // Closed when the step has stopped executing.
	Error   atomic.Pointer[error] // Acts as a tri-state value.
	Index   int                   // The position of the element in the source.
	Name    string                // The dotted operation name.
	Op      string                // One of "map", "reduce", or "foreach".
	RunID   string                // Shared by all steps of one operation run.
	Started time.Time             // Set before Middleware starts.
}

// StepInfoFrom returns a [StepInfo] for the given context, or false if
// the context is not associated with a step.
func StepInfoFrom(ctx context.Context) (*StepInfo, bool) {
	found, ok := ctx.Value(stepInfoKey{}).(*StepInfo)
	return found, ok
}

// MarshalJSON summarizes the StepInfo.
func (i *StepInfo) MarshalJSON() ([]byte, error) {
	p := struct {
		Error   string    `json:"error,omitzero"`
		Index   int       `json:"index"`
		Name    string    `json:"name,omitzero"`
		Op      string    `json:"op,omitzero"`
		RunID   string    `json:"runId,omitzero"`
		Started time.Time `json:"started,omitzero"`
		State   string    `json:"state,omitzero"`
	}{
		Index:   i.Index,
		Name:    i.Name,
		Op:      i.Op,
		RunID:   i.RunID,
		Started: i.Started,
	}

	if ptr := i.Error.Load(); ptr == nil {
		p.State = "running"
	} else if err := *ptr; err == nil {
		p.State = "success"
	} else {
		p.Error = err.Error()
		p.State = "failed"
	}

	return json.Marshal(p)
}

// String is for debugging use only.
func (i *StepInfo) String() string {
	var state string
	if ptr := i.Error.Load(); ptr == nil {
		state = "(running)"
	} else if err := *ptr; err == nil {
		state = "(success)"
	} else {
		state = fmt.Sprintf("(failed %v)", err)
	}

	return fmt.Sprintf("%s[%d] (run %s, started %s) %s",
		i.Name, i.Index, i.RunID, i.Started, state)
}
