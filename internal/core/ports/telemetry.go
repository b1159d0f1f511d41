package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals the units of work a stage is about to run.
	EmitPlan(ctx context.Context, stage string, names []string)
}

// Span represents a unit of work.
// Writes to a span carry the output of that unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError marks the span as failed.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Quiet spans are traced but not rendered as units of work.
	Quiet bool
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithQuiet marks a span as a grouping span that renderers do not display.
func WithQuiet() SpanOption {
	return func(c *SpanConfig) {
		c.Quiet = true
	}
}
