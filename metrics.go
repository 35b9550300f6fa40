// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Instrument names.
const (
	metricOpDuration = "asyncarray.operation.duration"
	metricOpTotal    = "asyncarray.operation.total"
	metricStepActive = "asyncarray.step.active"
	metricStepTotal  = "asyncarray.step.total"
)

// Values of the status attribute.
const (
	statusFailed  = "failed"
	statusSuccess = "success"
)

type metrics struct {
	opDuration metric.Float64Histogram
	opTotal    metric.Int64Counter
	stepActive metric.Int64UpDownCounter
	stepTotal  metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	opDuration, err := meter.Float64Histogram(metricOpDuration,
		metric.WithDescription("Duration of operation runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", metricOpDuration, err)
	}

	opTotal, err := meter.Int64Counter(metricOpTotal,
		metric.WithDescription("Total number of operation runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", metricOpTotal, err)
	}

	stepActive, err := meter.Int64UpDownCounter(metricStepActive,
		metric.WithDescription("Number of currently executing steps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", metricStepActive, err)
	}

	stepTotal, err := meter.Int64Counter(metricStepTotal,
		metric.WithDescription("Total number of completed steps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", metricStepTotal, err)
	}

	return &metrics{
		opDuration: opDuration,
		opTotal:    opTotal,
		stepActive: stepActive,
		stepTotal:  stepTotal,
	}, nil
}

// noopMetrics discards all measurements.
func noopMetrics() *metrics {
	return &metrics{
		opDuration: noop.Float64Histogram{},
		opTotal:    noop.Int64Counter{},
		stepActive: noop.Int64UpDownCounter{},
		stepTotal:  noop.Int64Counter{},
	}
}

func (m *metrics) recordOp(ctx context.Context, o *op, err error, elapsed time.Duration) {
	m.opTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", o.kind),
		attribute.String("name", o.name),
		attribute.String("status", status(err)),
	))
	m.opDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("op", o.kind),
		attribute.String("name", o.name),
	))
}

func (m *metrics) stepStart(ctx context.Context, o *op) {
	m.stepActive.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", o.kind),
	))
}

func (m *metrics) stepEnd(ctx context.Context, o *op, err error) {
	m.stepActive.Add(ctx, -1, metric.WithAttributes(
		attribute.String("op", o.kind),
	))
	m.stepTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", o.kind),
		attribute.String("name", o.name),
		attribute.String("status", status(err)),
	))
}

func status(err error) string {
	if err != nil {
		return statusFailed
	}
	return statusSuccess
}
