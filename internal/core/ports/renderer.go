package ports

import (
	"context"
	"time"
)

// Renderer presents build progress.
// It consumes the span stream produced through Tracer, so the engine never writes to the terminal.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// Stop flushes buffered output. No events are delivered afterwards.
	Stop() error

	// Wait blocks until the renderer has terminated.
	Wait() error

	// OnPlanEmit is called when a stage knows the work it is about to run.
	OnPlanEmit(stage string, tasks []string)

	// OnTaskStart is called when a unit of work begins.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called with output of a unit of work (compiler diagnostics).
	// data may contain partial lines.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a unit of work finishes. err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)
}
