package telemetry_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// recordingRenderer is a ports.Renderer remembering every event as a line.
type recordingRenderer struct {
	mu     sync.Mutex
	events []string
	names  map[string]string
}

func (r *recordingRenderer) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recordingRenderer) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingRenderer) Start(_ context.Context) error { return nil }
func (r *recordingRenderer) Stop() error                   { return nil }
func (r *recordingRenderer) Wait() error                   { return nil }

func (r *recordingRenderer) OnPlanEmit(stage string, tasks []string) {
	r.record("plan %s [%s]", stage, strings.Join(tasks, ", "))
}

func (r *recordingRenderer) OnTaskStart(spanID, parentID, name string, _ time.Time) {
	r.mu.Lock()
	if r.names == nil {
		r.names = make(map[string]string)
	}
	r.names[spanID] = name
	r.mu.Unlock()

	r.record("start %s (child: %t)", name, parentID != "")
}

func (r *recordingRenderer) OnTaskLog(spanID string, data []byte) {
	r.record("log %s %q", r.name(spanID), data)
}

func (r *recordingRenderer) OnTaskComplete(spanID string, _ time.Time, err error) {
	if err != nil {
		r.record("fail %s: %v", r.name(spanID), err)
		return
	}
	r.record("done %s", r.name(spanID))
}

func (r *recordingRenderer) name(spanID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names[spanID]
}
