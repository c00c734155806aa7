package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the service's metric instruments.
type Metrics struct {
	requestTotal      metric.Int64Counter
	requestDuration   metric.Float64Histogram
	requestActive     metric.Int64UpDownCounter
	inferenceTotal    metric.Int64Counter
	inferenceDuration metric.Float64Histogram
	gateWait          metric.Float64Histogram
	gateInUse         metric.Int64UpDownCounter
	segments          metric.Int64Histogram
	errorTotal        metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.requestTotal, err = meter.Int64Counter("whisperd.request.total",
		metric.WithDescription("Total number of transcription requests"),
	); err != nil {
		return nil, fmt.Errorf("creating request.total counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("whisperd.request.duration",
		metric.WithDescription("Duration of transcription requests"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating request.duration histogram: %w", err)
	}
	if m.requestActive, err = meter.Int64UpDownCounter("whisperd.request.active",
		metric.WithDescription("Number of in-flight transcription requests"),
	); err != nil {
		return nil, fmt.Errorf("creating request.active counter: %w", err)
	}
	if m.inferenceTotal, err = meter.Int64Counter("whisperd.inference.total",
		metric.WithDescription("Total number of inference calls by backend and status"),
	); err != nil {
		return nil, fmt.Errorf("creating inference.total counter: %w", err)
	}
	if m.inferenceDuration, err = meter.Float64Histogram("whisperd.inference.duration",
		metric.WithDescription("Time spent inside the inference gate"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating inference.duration histogram: %w", err)
	}
	if m.gateWait, err = meter.Float64Histogram("whisperd.gate.wait",
		metric.WithDescription("Time spent waiting for the inference gate"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating gate.wait histogram: %w", err)
	}
	if m.gateInUse, err = meter.Int64UpDownCounter("whisperd.gate.in_use",
		metric.WithDescription("Inference gate slots currently held"),
	); err != nil {
		return nil, fmt.Errorf("creating gate.in_use counter: %w", err)
	}
	if m.segments, err = meter.Int64Histogram("whisperd.audio.segments",
		metric.WithDescription("Non-silent segments found per clip"),
	); err != nil {
		return nil, fmt.Errorf("creating audio.segments histogram: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("whisperd.error.total",
		metric.WithDescription("Total errors by code and stage"),
	); err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &m, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements in-flight requests and records the completed request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

// RecordInference records one backend call and how long it held the gate.
func (m *Metrics) RecordInference(ctx context.Context, backend, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	)
	m.inferenceTotal.Add(ctx, 1, attrs)
	m.inferenceDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGateAcquired records the wait for the inference gate.
func (m *Metrics) RecordGateAcquired(ctx context.Context, waited time.Duration) {
	if m == nil {
		return
	}
	m.gateWait.Record(ctx, waited.Seconds())
	m.gateInUse.Add(ctx, 1)
}

// RecordGateReleased records the gate being freed.
func (m *Metrics) RecordGateReleased(ctx context.Context) {
	if m == nil {
		return
	}
	m.gateInUse.Add(ctx, -1)
}

// RecordSegments records how many speech segments a clip produced.
func (m *Metrics) RecordSegments(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.segments.Record(ctx, int64(n))
}

// RecordError records a failure by error code and pipeline stage.
func (m *Metrics) RecordError(ctx context.Context, code, stage string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("stage", stage),
	))
}
