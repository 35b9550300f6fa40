// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"runtime/trace"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"vawter.tech/asyncarray/internal/safe"
)

// Operation kinds, as reported by [StepInfo.Op].
const (
	opForEach = "foreach"
	opMap     = "map"
	opReduce  = "reduce"
)

// An op is the configuration of a single Map, Reduce, or ForEach call.
type op struct {
	cfg     *config
	kind    string
	metrics *metrics
	name    string
}

func newOp(base *config, kind string, opts []Option) *op {
	cfg := newConfig(base, append([]Option{WithName(kind)}, opts...))
	return &op{
		cfg:     cfg,
		kind:    kind,
		metrics: cfg.meters,
		name:    cfg.name,
	}
}

// A run is one execution of an op against a resolved snapshot.
type run struct {
	id  string
	log zerolog.Logger
	op  *op
}

// exec surrounds the body with tracing and logging. The context passed
// to the body is derived from the bound context.
func (o *op) exec(n int, body func(ctx context.Context, r *run) error) error {
	r := &run{
		id: uuid.NewString(),
		op: o,
	}
	r.log = o.cfg.logger.With().
		Str("op", o.kind).
		Str("name", o.name).
		Str("run", r.id).
		Logger()

	ctx, task := trace.NewTask(o.cfg.bind, o.name)
	defer task.End()
	ctx, span := o.cfg.tracer().Start(ctx, o.name,
		oteltrace.WithAttributes(
			attribute.String("asyncarray.op", o.kind),
			attribute.Int("asyncarray.len", n),
			attribute.String("asyncarray.run", r.id),
		))
	defer span.End()

	r.log.Debug().Int("len", n).Msg("operation started")
	started := time.Now()

	err := body(ctx, r)
	o.metrics.recordOp(ctx, o, err, time.Since(started))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.log.Debug().Err(err).Dur("elapsed", time.Since(started)).Msg("operation failed")
		return err
	}
	r.log.Debug().Dur("elapsed", time.Since(started)).Msg("operation settled")
	return nil
}

// step invokes the callback for one element through the middleware
// chain. Errors are returned verbatim; panics become RecoveredErrors.
func (r *run) step(ctx context.Context, idx int, fn Step) error {
	done := make(chan struct{})
	defer close(done)
	info := &StepInfo{
		Done:    done,
		Index:   idx,
		Name:    r.op.name,
		Op:      r.op.kind,
		RunID:   r.id,
		Started: time.Now(),
	}
	ctx = context.WithValue(ctx, stepInfoKey{}, info)
	defer trace.StartRegion(ctx, "step").End()
	r.op.metrics.stepStart(ctx, r.op)

	err := safe.Run(func() error {
		ctx, invoke := chain(ctx, r.op.cfg.mw)
		return invoke(ctx, fn)
	})
	info.Error.Store(&err)
	r.op.metrics.stepEnd(ctx, r.op, err)
	if err != nil {
		r.log.Debug().Int("index", idx).Err(err).Msg("step failed")
	}
	return err
}
