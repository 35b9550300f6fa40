// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import "context"

// A Step is a single invocation of a user-provided callback for one
// element of an [Array]. The [StepInfo] for the element may be
// retrieved from the context via [StepInfoFrom].
type Step func(ctx context.Context) error

// An Invoker is responsible for calling a Step. An Invoker may choose
// to call the Step more than once (e.g. to retry) or not at all, in
// which case it should return an error to stop the operation.
type Invoker func(ctx context.Context, step Step) error

// Middleware is called once for every Step, in the order in which it
// was attached, before any Step is invoked. It may decorate the
// context and returns an Invoker that will be chained with those of
// the other Middleware. Middleware that needs to wait (e.g. for a rate
// limit) should do so in the setup phase.
type Middleware func(ctx context.Context) (context.Context, Invoker)

// InvokerCall is a trivial Invoker that calls the Step.
func InvokerCall(ctx context.Context, step Step) error {
	return step(ctx)
}

// InvokerErr returns an Invoker that fails the Step with the given
// error without calling it.
func InvokerErr(err error) Invoker {
	return func(context.Context, Step) error {
		return err
	}
}

// chain performs the setup of each Middleware in declaration order and
// returns the combined Invoker.
func chain(ctx context.Context, mw []Middleware) (context.Context, Invoker) {
	if len(mw) == 0 {
		return ctx, InvokerCall
	}
	invokers := make([]Invoker, len(mw))
	for idx, fn := range mw {
		ctx, invokers[idx] = fn(ctx)
	}

	// Build the invocation chain from the bottom up.
	ret := Invoker(InvokerCall)
	for i := len(invokers) - 1; i >= 0; i-- {
		invoker := invokers[i]
		next := ret
		ret = func(ctx context.Context, step Step) error {
			return invoker(ctx, func(ctx context.Context) error {
				return next(ctx, step)
			})
		}
	}
	return ctx, ret
}
