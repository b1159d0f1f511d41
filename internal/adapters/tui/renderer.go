// Package tui provides an interactive terminal user interface for builds.
package tui

import (
	"context"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/smelt/internal/ui/output"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer wraps the Bubble Tea model as a ports.Renderer.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
}

// NewRenderer creates a TUI renderer drawing to w. A nil w selects os.Stderr.
func NewRenderer(w io.Writer, opts ...tea.ProgramOption) *Renderer {
	if w == nil {
		w = os.Stderr
	}
	lipgloss.SetColorProfile(output.Profile(output.Terminal))

	model := NewModel()
	opts = append([]tea.ProgramOption{tea.WithOutput(w)}, opts...)
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		errCh:   make(chan error, 1),
	}
}

// Start launches the TUI in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop signals the TUI to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the TUI has terminated. It returns domain.ErrInterrupted
// when the user quit the TUI.
func (r *Renderer) Wait() error {
	if err := <-r.errCh; err != nil {
		return err
	}
	if r.model.Interrupted {
		return domain.ErrInterrupted
	}
	return nil
}

// OnPlanEmit adds the planned tasks to the list.
func (r *Renderer) OnPlanEmit(stage string, tasks []string) {
	r.program.Send(PlanMsg{Stage: stage, Tasks: tasks})
}

// OnTaskStart forwards task start events to the TUI.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.program.Send(TaskStartMsg{
		SpanID:    spanID,
		ParentID:  parentID,
		Name:      name,
		StartTime: startTime,
	})
}

// OnTaskLog forwards task output to the TUI.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.program.Send(TaskLogMsg{
		SpanID: spanID,
		Data:   append([]byte(nil), data...),
	})
}

// OnTaskComplete forwards task completion events to the TUI.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.program.Send(TaskCompleteMsg{
		SpanID:  spanID,
		EndTime: endTime,
		Err:     err,
	})
}

// Program returns the underlying tea.Program for testing.
func (r *Renderer) Program() *tea.Program {
	return r.program
}
