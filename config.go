// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package asyncarray

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultName = "asyncarray"
	scopeName   = "vawter.tech/asyncarray"
)

// An Option configures an [Array] when passed to a constructor, or a
// single operation when passed to [Array.Map], [Array.Reduce],
// [Array.ForEach], [Map], or [Fold]. Operation options are merged over
// the options of the Array.
type Option func(*config)

// Bind sets the context that is passed to every callback. Values
// attached to the bound context are visible to the callback through
// [context.Context.Value]. By default, callbacks are bound to the
// context that was used to construct the Array.
func Bind(ctx context.Context) Option {
	return func(cfg *config) {
		cfg.bind = ctx
	}
}

// WithLogger attaches a structured logger. Operation lifecycles and
// step failures are reported at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = &l
	}
}

// WithMeterProvider sets the OpenTelemetry provider used to record
// operation and step metrics. The global provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *config) {
		cfg.meterProvider = mp
	}
}

// WithMiddleware appends [Middleware] to be executed around every step.
func WithMiddleware(mw ...Middleware) Option {
	return func(cfg *config) {
		cfg.mw = append(cfg.mw, mw...)
	}
}

// WithName sets a name for use in logs and traces. Operation names are
// appended to the name of the Array, separated by a period.
func WithName(name string) Option {
	return func(cfg *config) {
		cfg.name = name
	}
}

// WithTracerProvider sets the OpenTelemetry provider used to create a
// span for every operation. The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.tracerProvider = tp
	}
}

// WithWorkers allows [Array.Map] and [Map] to execute up to n
// transforms concurrently. The resulting elements remain in source
// order. The first failure prevents any further element from being
// started and cancels the context passed to in-flight transforms.
//
// Reductions and [Array.ForEach] always process elements one at a
// time and ignore this option.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		cfg.workers = n
	}
}

type config struct {
	bind           context.Context
	logger         *zerolog.Logger
	meterProvider  metric.MeterProvider
	meters         *metrics // Shared by clones until the provider changes.
	mw             []Middleware
	name           string
	tracerProvider trace.TracerProvider
	workers        int
}

// newConfig flattens the options over a clone of the base
// configuration. The base may be nil.
func newConfig(base *config, opts []Option) *config {
	next := &config{}
	for _, opt := range opts {
		opt(next)
	}
	var ret *config
	if base == nil {
		ret = &config{}
	} else {
		ret = base.Clone()
	}
	ret.Merge(next)
	ret.Sanitize()
	return ret
}

// Clone returns a deep copy of the config.
func (c *config) Clone() *config {
	ret := *c
	ret.mw = slices.Clone(c.mw)
	return &ret
}

// Merge overwrites scalar values and appends middleware. Operation
// names are nested within the receiver's name.
func (c *config) Merge(other *config) {
	if other.bind != nil {
		c.bind = other.bind
	}
	if other.logger != nil {
		c.logger = other.logger
	}
	if other.meterProvider != nil {
		c.meterProvider = other.meterProvider
		c.meters = nil
	}
	c.mw = append(c.mw, other.mw...)
	if other.name != "" {
		if c.name == "" {
			c.name = other.name
		} else {
			c.name = c.name + "." + other.name
		}
	}
	if other.tracerProvider != nil {
		c.tracerProvider = other.tracerProvider
	}
	if other.workers != 0 {
		c.workers = other.workers
	}
}

// Sanitize installs default values.
func (c *config) Sanitize() {
	if c.bind == nil {
		c.bind = context.Background()
	}
	if c.logger == nil {
		nop := zerolog.Nop()
		c.logger = &nop
	}
	if c.meterProvider == nil {
		c.meterProvider = otel.GetMeterProvider()
	}
	if c.name == "" {
		c.name = defaultName
	}
	if c.tracerProvider == nil {
		c.tracerProvider = otel.GetTracerProvider()
	}
	if c.workers < 1 {
		c.workers = 1
	}
	if c.meters == nil {
		c.meters = c.buildMetrics()
	}
}

// buildMetrics creates the instruments of the configured provider.
// Metrics are disabled if the instruments cannot be created.
func (c *config) buildMetrics() *metrics {
	m, err := newMetrics(c.meterProvider.Meter(scopeName))
	if err != nil {
		c.logger.Warn().Err(err).Msg("metrics disabled")
		return noopMetrics()
	}
	return m
}

func (c *config) tracer() trace.Tracer {
	return c.tracerProvider.Tracer(scopeName)
}
