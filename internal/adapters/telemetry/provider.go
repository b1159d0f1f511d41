package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/smelt/internal/core/ports"
)

// QuietAttribute marks spans that are traced but not rendered.
const QuietAttribute = attribute.Key("smelt.quiet")

// OTelTracer implements ports.Tracer using OpenTelemetry.
// Span output and plans are forwarded to the attached renderer; span start
// and completion reach it through a Bridge installed on the tracer provider.
type OTelTracer struct {
	name string

	mu       sync.RWMutex
	tracer   trace.Tracer
	renderer ports.Renderer
}

// NewOTelTracer creates a tracer with the given instrumentation name, backed
// by the global tracer provider.
func NewOTelTracer(name string) *OTelTracer {
	return &OTelTracer{name: name, tracer: otel.Tracer(name)}
}

// WithRenderer attaches the renderer receiving span output and plans.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer = r
	return t
}

func (t *OTelTracer) current() (trace.Tracer, ports.Renderer) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tracer, t.renderer
}

// Install registers a tracer provider bridging spans to r as the global
// provider and attaches r to t. The returned function shuts the provider down.
func (t *OTelTracer) Install(r ports.Renderer) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewBridge(r)))
	otel.SetTracerProvider(tp)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracer = tp.Tracer(t.name)
	t.renderer = r
	return tp.Shutdown
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var startOpts []trace.SpanStartOption
	if cfg.Quiet {
		startOpts = append(startOpts, trace.WithAttributes(QuietAttribute.Bool(true)))
	}
	tracer, r := t.current()
	ctx, span := tracer.Start(ctx, name, startOpts...)

	s := &OTelSpan{span: span}
	if r != nil && !cfg.Quiet {
		spanID := span.SpanContext().SpanID().String()
		s.batcher = NewLogBatcher(0, 0, func(data []byte) {
			r.OnTaskLog(spanID, data)
		})
	}
	return ctx, s
}

// EmitPlan records the plan as an event on the current span and announces it
// to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, stage string, names []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.String("stage", stage),
			attribute.StringSlice("tasks", names),
		))
	}

	if _, r := t.current(); r != nil {
		r.OnPlanEmit(stage, names)
	}
}

// OTelSpan implements ports.Span using OpenTelemetry.
type OTelSpan struct {
	span    trace.Span
	batcher *LogBatcher
}

// End flushes buffered output and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError records err and marks the span as failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write sends p to the renderer when one is attached and records it as a
// span event otherwise.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}
