package watcher

import (
	"slices"
	"sync"
	"time"
)

// DefaultDebounceWindow is the quiet period after the last event before a batch is emitted.
const DefaultDebounceWindow = 200 * time.Millisecond

// Debouncer coalesces bursts of changed paths into sorted, deduplicated
// batches delivered on C. While the receiver is busy, new paths keep
// accumulating and are delivered as one batch once it is ready again.
type Debouncer struct {
	window time.Duration
	out    chan []string

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	closed  bool
}

// NewDebouncer creates a Debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{
		window:  window,
		out:     make(chan []string, 1),
		pending: make(map[string]struct{}),
	}
}

// C returns the channel batches are delivered on. It is closed by Close.
func (d *Debouncer) C() <-chan []string {
	return d.out
}

// Add records a changed path and restarts the quiet window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.pending[path] = struct{}{}
	d.arm()
}

// Flush delivers pending paths without waiting for the window, if the
// receiver is ready.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emit()
}

// Close stops the debouncer and closes C. Pending paths are dropped.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.out)
}

// arm must be called with mu held.
func (d *Debouncer) arm() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emit()
}

// emit must be called with mu held. A busy receiver leaves the paths
// pending and retries after another window.
func (d *Debouncer) emit() {
	if d.closed || len(d.pending) == 0 {
		return
	}

	batch := make([]string, 0, len(d.pending))
	for p := range d.pending {
		batch = append(batch, p)
	}
	slices.Sort(batch)

	select {
	case d.out <- batch:
		clear(d.pending)
		if d.timer != nil {
			d.timer.Stop()
			d.timer = nil
		}
	default:
		d.arm()
	}
}
