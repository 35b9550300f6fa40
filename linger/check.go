// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package linger

// CheckClean will record a test error if there are any steps still
// being tracked by the Recorder. A description of each step is written
// into the test log.
func CheckClean(t TestingT, r *Recorder) {
	running := r.Running()
	if len(running) == 0 {
		return
	}

	// Improve error messages if we're being called from a real test.
	if x, ok := t.(interface{ Helper() }); ok {
		x.Helper()
	}

	t.Errorf("lingering steps detected")
	for _, info := range running {
		t.Errorf("  %s", info)
	}
}

// TestingT is the subset of [testing.TB] needed by [CheckClean].
type TestingT interface {
	Errorf(string, ...any)
}
