package decompose

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for decomposition runs.
var (
	tracer = otel.Tracer("splinter.decompose")
	meter  = otel.Meter("splinter.decompose")
)

// Metrics for decomposition runs.
var (
	runLatency       metric.Float64Histogram
	runTotal         metric.Int64Counter
	componentsOut    metric.Int64Histogram
	strategyAttempts metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"decompose_duration_seconds",
			metric.WithDescription("Duration of decomposition runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runTotal, err = meter.Int64Counter(
			"decompose_runs_total",
			metric.WithDescription("Total number of decomposition runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		componentsOut, err = meter.Int64Histogram(
			"decompose_components",
			metric.WithDescription("Number of components returned per run"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		strategyAttempts, err = meter.Int64Counter(
			"decompose_strategy_attempts_total",
			metric.WithDescription("Strategy attempts during escalation, by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startRunSpan creates a span for one decomposition run.
func startRunSpan(ctx context.Context, level Level, faces int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Decomposer.Run",
		trace.WithAttributes(
			attribute.String("decompose.level", level.String()),
			attribute.Int("decompose.faces", faces),
		),
	)
}

// startStrategySpan creates a child span for one strategy attempt.
func startStrategySpan(ctx context.Context, s Strategy) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Decomposer.Strategy",
		trace.WithAttributes(attribute.String("decompose.strategy", s.String())),
	)
}

// setRunSpanResult sets the result attributes on a run span.
func setRunSpanResult(span trace.Span, res *Result) {
	span.SetAttributes(
		attribute.String("decompose.strategy", res.Strategy.String()),
		attribute.Int("decompose.components", len(res.Components)),
	)
}

// recordRunMetrics records metrics for a finished run.
func recordRunMetrics(ctx context.Context, duration time.Duration, res *Result) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("level", res.Level.String()),
		attribute.String("strategy", res.Strategy.String()),
	)
	runLatency.Record(ctx, duration.Seconds(), attrs)
	runTotal.Add(ctx, 1, attrs)
	componentsOut.Record(ctx, int64(len(res.Components)), attrs)
}

// recordStrategyAttempt counts one escalation attempt.
func recordStrategyAttempt(ctx context.Context, s Strategy, won bool) {
	if err := initMetrics(); err != nil {
		return
	}
	strategyAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", s.String()),
		attribute.Bool("won", won),
	))
}
