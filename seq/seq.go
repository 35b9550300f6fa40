// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package seq converts between [asyncarray.Array] and the [iter.Seq]
// and [iter.Seq2] sequence types.
//
// Sequences are pulled lazily: [Collect] does not read its input until
// the Array is driven, and [Values] and [All] do not drive their
// source until they are ranged over.
package seq
