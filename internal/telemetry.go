package internal

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry wraps the global tracer and meter providers for one buffer
// component instance.
type Telemetry struct {
	component string
	name      string

	l *Logger

	tracer trace.Tracer
	meter  metric.Meter
}

func NewTelemetry(component, name string) *Telemetry {
	return &Telemetry{
		component: component,
		name:      name,

		l: NewLogger(component, name),

		tracer: otel.GetTracerProvider().Tracer("circbuf"),
		meter:  otel.GetMeterProvider().Meter("circbuf"),
	}
}

func (t *Telemetry) Logger() *Logger {
	return t.l
}

func (t *Telemetry) LogInfo(msg string, args ...any) {
	t.l.Info(msg, args...)
}

func (t *Telemetry) LogWarn(msg string, args ...any) {
	t.l.Warn(msg, args...)
}

func (t *Telemetry) LogError(msg string, err error, args ...any) {
	t.l.Error(msg, err, args...)
}

func (t *Telemetry) setDefaultAttributes(span trace.Span) {
	span.SetAttributes(
		attribute.String("circbuf.component", t.component),
		attribute.String("circbuf.name", t.name),
	)
}

func (t *Telemetry) NewTrace(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, spanName, opts...)
	t.setDefaultAttributes(span)
	return ctx, span
}

func (t *Telemetry) meterName(name string) string {
	return fmt.Sprintf("%s_%s_%s", t.component, t.name, name)
}

// NewCounter registers an observable counter backed by the given callback.
func (t *Telemetry) NewCounter(name string, callback func() int64) {
	counterName := t.meterName(name)

	_, err := t.meter.Int64ObservableCounter(counterName,
		metric.WithInt64Callback(func(_ context.Context, obs metric.Int64Observer) error {
			obs.Observe(callback())
			return nil
		}),
	)
	if err != nil {
		t.LogError("failed to create counter", err, "name", counterName)
		return
	}

	t.LogInfo("created counter", "name", counterName)
}

// NewGauge registers an observable gauge backed by the given callback.
func (t *Telemetry) NewGauge(name string, callback func() int64) {
	gaugeName := t.meterName(name)

	_, err := t.meter.Int64ObservableGauge(gaugeName,
		metric.WithInt64Callback(func(_ context.Context, obs metric.Int64Observer) error {
			obs.Observe(callback())
			return nil
		}),
	)
	if err != nil {
		t.LogError("failed to create gauge", err, "name", gaugeName)
		return
	}

	t.LogInfo("created gauge", "name", gaugeName)
}
