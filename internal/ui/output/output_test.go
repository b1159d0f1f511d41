package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/smelt/internal/ui/output"
)

func TestProfile(t *testing.T) {
	tests := []struct {
		name    string
		noColor string
		term    string
		stream  output.Stream
		want    termenv.Profile
	}{
		{name: "log defaults to ansi", term: "xterm-256color", stream: output.Log, want: termenv.ANSI},
		{name: "log on dumb terminal", term: "dumb", stream: output.Log, want: termenv.Ascii},
		{name: "log with NO_COLOR", noColor: "1", term: "xterm", stream: output.Log, want: termenv.Ascii},
		{name: "terminal with NO_COLOR", noColor: "1", term: "xterm-256color", stream: output.Terminal, want: termenv.Ascii},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("TERM", tt.term)
			assert.Equal(t, tt.want, output.Profile(tt.stream))
		})
	}
}

func TestProfile_TerminalIsValid(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	p := output.Profile(output.Terminal)
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii)
}

func TestNew_LogColoursWithoutTTY(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm")

	var buf bytes.Buffer
	out := output.New(&buf, output.Log)
	_, _ = out.WriteString(out.String("✓").Foreground(termenv.ANSIGreen).String())
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "✓")
}

func TestNew_PlainWithNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := output.New(&buf, output.Log)
	_, _ = out.WriteString(out.String("✗").Foreground(termenv.ANSIRed).String())
	assert.Equal(t, "✗", buf.String())
}

func TestNew_Nil(t *testing.T) {
	assert.NotNil(t, output.New(nil, output.Terminal))
}
