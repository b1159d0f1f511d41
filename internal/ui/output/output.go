// Package output builds termenv outputs for the two kinds of stream smelt
// writes: the terminal the TUI draws on and the line log CI captures.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Stream identifies who reads an output.
type Stream int

const (
	// Terminal is a person at an interactive TTY.
	Terminal Stream = iota
	// Log is a CI job log, a pipe or a redirected file.
	Log
)

// Profile returns the colour profile for s.
// NO_COLOR turns colour off everywhere; TERM=dumb turns it off for logs.
// Terminals get what they advertise, logs get plain 16-colour ANSI.
func Profile(s Stream) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if s == Terminal {
		return termenv.EnvColorProfile()
	}
	if os.Getenv("TERM") == "dumb" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New returns an output for s writing to w, or to os.Stderr when w is nil.
// TTY detection is forced on so that Profile alone decides about escapes.
func New(w io.Writer, s Stream) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w,
		termenv.WithProfile(Profile(s)),
		termenv.WithTTY(true),
	)
}
