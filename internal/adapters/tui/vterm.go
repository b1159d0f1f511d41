package tui

import (
	"bytes"
	"sync"

	"github.com/vito/midterm"
)

// Vterm holds the output of one unit of work in a virtual terminal, so
// compiler colors and carriage returns render as they would in a shell.
// The view is a window of Height rows starting at the scroll offset.
type Vterm struct {
	mu      sync.Mutex
	vt      *midterm.Terminal
	viewBuf bytes.Buffer
	offset  int
	height  int
	width   int
	written bool
}

// NewVterm creates an empty Vterm one row high.
func NewVterm() *Vterm {
	return &Vterm{
		vt:     midterm.NewAutoResizingTerminal(),
		height: 1,
	}
}

// Write appends output. A view scrolled to the bottom follows new output.
func (v *Vterm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.offset >= v.maxOffset()
	v.written = v.written || len(p) > 0
	n, err := v.vt.Write(p)
	if follow {
		v.offset = v.maxOffset()
	}
	return n, err
}

// Resize sets the view dimensions. Values below one are raised to one.
func (v *Vterm) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.offset >= v.maxOffset()

	v.width = max(width, 1)
	v.height = max(height, 1)
	v.vt.ResizeX(v.width)

	if follow {
		v.offset = v.maxOffset()
	}
	v.clamp()
}

// Scroll moves the view by delta rows; negative values scroll up.
func (v *Vterm) Scroll(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.offset += delta
	v.clamp()
}

// ScrollToBottom moves the view to the latest output.
func (v *Vterm) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.offset = v.maxOffset()
}

// Offset returns the first visible row.
func (v *Vterm) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// Size returns the view width and height.
func (v *Vterm) Size() (width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// Empty reports whether nothing has been written yet.
func (v *Vterm) Empty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.written
}

// Lines returns the number of rows written so far.
func (v *Vterm) Lines() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vt.UsedHeight()
}

// View renders the visible rows.
func (v *Vterm) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.viewBuf.Reset()
	used := v.vt.UsedHeight()
	for i := range v.height {
		row := v.offset + i
		if row >= used {
			break
		}
		if i > 0 {
			_ = v.viewBuf.WriteByte('\n')
		}
		_ = v.vt.RenderLine(&v.viewBuf, row)
	}
	return v.viewBuf.String()
}

func (v *Vterm) clamp() {
	v.offset = min(max(v.offset, 0), v.maxOffset())
}

func (v *Vterm) maxOffset() int {
	return max(v.vt.UsedHeight()-v.height, 0)
}
