// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package asyncarray provides ordered, asynchronous analogues of the
// map, reduce, and for-each list operations.
//
// An [Array] wraps a sequence of elements together with the single
// pending computation that will produce them. Callbacks may block
// (e.g. on I/O or on another [Promise]); the engine guarantees that
// each callback returns before the callback for the next element is
// invoked, so accumulators and side effects are observed in source
// order exactly as with their synchronous counterparts.
//
// # Creating an Array
//
// Use [New] or [Of] to wrap elements that are already known, or [From]
// to adopt the eventual result of another asynchronous computation.
// [FromMapped] adopts a result and transforms it in one step.
//
//	arr := asyncarray.Of(ctx, 1, 2, 3, 4, 5)
//	arr := asyncarray.From(ctx, fetchIDs(ctx))
//
// # Laziness
//
// No callback is invoked until a result is driven to completion by
// [Promise.Await], [Promise.Done], [Promise.Start], or [Promise.Then]
// (or the equivalent methods on [Array]). Each [Promise] runs its
// computation exactly once, in its own goroutine.
//
// # Operations
//
// [Array.Map] replaces the pending computation with one that is
// chained after it and returns the receiver, so calls may be chained.
// [Map] does the same while changing the element type, returning a new
// Array. Both preserve the number and order of elements.
//
//	doubled, err := arr.Map(double).Map(increment).Await(ctx)
//
// [Array.Reduce] folds the elements using the first element as the
// initial accumulator and is rejected with [ErrEmptyReduce] for an
// empty Array. [Fold] accepts an explicit initial value.
// [Array.ForEach] walks the elements for their side effects.
//
// Every callback receives the element's index and a copy of the
// complete source, mirroring the arguments of the synchronous list
// operations. Callbacks that return a [Promise] can be adapted with
// [AwaitMapper], [AwaitReducer], and [AwaitVisitor]. Callbacks with
// shorter signatures can be adapted with [Transform] and [Visit].
//
// # Errors
//
// The first error returned by a callback rejects the result verbatim,
// so it may be compared by identity, and no later element is visited.
// A panicking callback is reported as a [RecoveredError].
//
// # Binding
//
// Callbacks receive a [context.Context] derived from the context given
// to the constructor, or from the context given to [Bind]. Values
// attached to the bound context are visible to every callback.
// Canceling it does not interrupt the engine; callbacks that wish to
// stop early should observe [context.Context.Done] and return an
// error.
//
// # Middleware
//
// [Middleware] attached via [WithMiddleware] wraps the invocation of
// every callback. [StepInfoFrom] reports which element is being
// processed. The limit sub-package provides rate and concurrency
// limits and the retry sub-package retries failing callbacks. The
// linger sub-package detects callbacks that have not returned.
//
// # Concurrency
//
// [WithWorkers] allows [Array.Map] and [Map] to run several
// transforms at once. Transforms are started in source order and the
// results are assembled by index, so the output is identical to the
// sequential case. Reductions and [Array.ForEach] are always
// sequential.
//
// # Observability
//
// Every operation creates a [runtime/trace.Task] and an OpenTelemetry
// span (see [WithTracerProvider]); every callback invocation is a
// [runtime/trace.Region]. Operation and step counts and durations are
// recorded with the OpenTelemetry meter provider given to
// [WithMeterProvider]. Operation lifecycles are logged at debug level
// to the [github.com/rs/zerolog.Logger] given to [WithLogger].
//
// # Sequences
//
// The seq sub-package converts between an Array and [iter.Seq].
package asyncarray
