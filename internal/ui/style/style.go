// Package style holds the palette and glyphs smelt uses to show where a build
// step (a feature check, a compile or an archive) stands.
package style

import "github.com/charmbracelet/lipgloss"

// State is the on-screen lifecycle position of a build step.
type State int

const (
	// Pending steps are planned but not started.
	Pending State = iota
	// Running steps hold a scheduler slot.
	Running
	// Done steps finished successfully.
	Done
	// Failed steps returned an error or a non-zero exit code.
	Failed
)

type look struct {
	glyph string
	color lipgloss.Color
}

var looks = [...]look{
	Pending: {glyph: "○", color: lipgloss.Color("#64748B")},
	Running: {glyph: "●", color: lipgloss.Color("#7C3AED")},
	Done:    {glyph: "✓", color: lipgloss.Color("#15803D")},
	Failed:  {glyph: "✗", color: lipgloss.Color("#B91C1C")},
}

// Glyph returns the single-cell marker drawn next to a step.
func (s State) Glyph() string {
	if s < Pending || s > Failed {
		return looks[Pending].glyph
	}
	return looks[s].glyph
}

// Color returns the foreground used for a step and its marker.
func (s State) Color() lipgloss.Color {
	if s < Pending || s > Failed {
		return looks[Pending].color
	}
	return looks[s].color
}

// Chrome colours that are not tied to a step state.
var (
	// Accent highlights the selection and the header bar.
	Accent = Running.Color()
	// OnAccent is text drawn on an Accent or Failed background.
	OnAccent = lipgloss.Color("#F8FAFC")
	// Muted is used for borders and informational log lines.
	Muted = Pending.Color()
	// Caution marks warnings such as a cache that could not be written.
	Caution = lipgloss.Color("#B45309")
)

// WarningGlyph prefixes warning log lines.
const WarningGlyph = "!"
