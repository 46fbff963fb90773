// Package engine coordinates experiment lifecycle, variant assignment,
// event tracking and result analysis on top of the repository ports.
package engine

import (
	"context"
	"time"

	"github.com/AFA55/pontifex-industries-sub002/internal/ports"
)

// Logger receives diagnostic output from the engine.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type noopMetrics struct{}

func (noopMetrics) RecordAssignment(context.Context, string, string)         {}
func (noopMetrics) RecordExposure(context.Context, string, string, string)   {}
func (noopMetrics) RecordConversion(context.Context, string, string, string) {}
func (noopMetrics) Close(context.Context) error                              { return nil }

// Engine runs experiments against injected repositories. All persistence
// goes through the ports, so the same engine serves the in-memory and the
// durable configuration.
type Engine struct {
	tests        ports.TestRepository
	participants ports.ParticipantRepository
	clock        ports.Clock
	metrics      ports.MetricsExporter
	logger       Logger
}

// Option customizes an Engine built by New.
type Option func(*Engine)

// WithClock overrides the engine's time source. Useful for tests and for
// replaying historical event streams.
func WithClock(clock ports.Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithMetrics attaches a metrics exporter for assignment and event counters.
func WithMetrics(metrics ports.MetricsExporter) Option {
	return func(e *Engine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// WithLogger attaches a logger for engine diagnostics.
func WithLogger(logger Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New builds an Engine over the given repositories. Clock, metrics and
// logger default to the system clock and no-ops.
func New(tests ports.TestRepository, participants ports.ParticipantRepository, opts ...Option) *Engine {
	e := &Engine{
		tests:        tests,
		participants: participants,
		clock:        systemClock{},
		metrics:      noopMetrics{},
		logger:       noopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
