package editor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "omredit.editor"

// Package-level meter for gesture metrics.
var meter = otel.Meter("omredit.editor")

// Gesture status attribute values.
const (
	statusSuccess   = "success"
	statusError     = "error"
	statusCancelled = "cancelled"
)

var (
	gesturesTotal   metric.Int64Counter
	gestureDuration metric.Float64Histogram
	tasksPerformed  metric.Int64Counter
	rebuiltGlyphs   metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// metricsEnabled controls whether metrics are recorded.
var metricsEnabled atomic.Bool

func init() {
	metricsEnabled.Store(true)
}

// SetMetricsEnabled controls whether gesture metrics are recorded.
//
// Thread Safety: Safe for concurrent use.
func SetMetricsEnabled(enabled bool) {
	metricsEnabled.Store(enabled)
}

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		gesturesTotal, err = meter.Int64Counter(
			"omredit_gestures_total",
			metric.WithDescription("Total number of editing gestures"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		gestureDuration, err = meter.Float64Histogram(
			"omredit_gesture_duration_seconds",
			metric.WithDescription("Duration of editing gestures in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		tasksPerformed, err = meter.Int64Counter(
			"omredit_tasks_performed_total",
			metric.WithDescription("Total number of tasks performed by gestures"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		rebuiltGlyphs, err = meter.Int64Histogram(
			"omredit_rebuilt_glyphs",
			metric.WithDescription("Number of glyphs created by one glyph rebuild"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})

	return metricsErr
}

// recordGesture records the outcome of one gesture.
func recordGesture(ctx context.Context, op, kind, status string, duration time.Duration, tasks int) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("kind", kind),
		attribute.String("status", status),
	)
	gesturesTotal.Add(ctx, 1, attrs)
	gestureDuration.Record(ctx, duration.Seconds(), attrs)
	if tasks > 0 {
		tasksPerformed.Add(ctx, int64(tasks), metric.WithAttributes(attribute.String("op", op)))
	}
}

func recordRebuild(ctx context.Context, created int) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	rebuiltGlyphs.Record(ctx, int64(created))
}

// Tracer creates one span per gesture.
//
// # Description
//
// Wraps the OpenTelemetry tracer. When disabled, returns noop spans.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type Tracer struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	enabled bool
}

// NewTracer creates a gesture tracer. A nil logger means slog.Default().
func NewTracer(logger *slog.Logger, enabled bool) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Tracer{
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
		enabled: enabled,
	}
}

// StartGesture starts the span of a gesture. Caller must call EndGesture.
func (t *Tracer) StartGesture(ctx context.Context, op, kind string) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}

	ctx, span := t.tracer.Start(ctx, "gesture."+op,
		trace.WithAttributes(
			attribute.String("gesture.op", op),
			attribute.String("gesture.kind", kind),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	t.logger.DebugContext(ctx, "starting gesture", slog.String("op", op), slog.String("kind", kind))

	return ctx, span
}

// EndGesture completes a gesture span.
func (t *Tracer) EndGesture(span trace.Span, out *Outcome, err error) {
	if span == nil {
		return
	}
	defer span.End()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "")
	if out != nil {
		span.SetAttributes(
			attribute.Bool("gesture.cancelled", out.Cancelled),
			attribute.Int("gesture.tasks", out.taskCount()),
		)
		if out.Seq != nil {
			span.SetAttributes(attribute.String("gesture.seq", out.Seq.ID().String()))
		}
	}
}
