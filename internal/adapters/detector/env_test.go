package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/smelt/internal/adapters/detector"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		isTTY    bool
		ci       string
		expected detector.OutputMode
	}{
		{name: "terminal", isTTY: true, expected: detector.ModeTUI},
		{name: "terminal in CI", isTTY: true, ci: "true", expected: detector.ModeLinear},
		{name: "CI=true", ci: "true", expected: detector.ModeLinear},
		{name: "CI=1", ci: "1", expected: detector.ModeLinear},
		{name: "CI=false piped", ci: "false", expected: detector.ModeQuiet},
		{name: "piped", expected: detector.ModeQuiet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(key string) string {
				if key == "CI" {
					return tt.ci
				}
				return ""
			}
			assert.Equal(t, tt.expected, detector.Detect(tt.isTTY, getenv))
		})
	}
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name         string
		autoDetected detector.OutputMode
		userFlag     string
		expected     detector.OutputMode
	}{
		{"auto keeps linear", detector.ModeLinear, "auto", detector.ModeLinear},
		{"auto keeps quiet", detector.ModeQuiet, "auto", detector.ModeQuiet},
		{"empty keeps detection", detector.ModeQuiet, "", detector.ModeQuiet},
		{"tui overrides", detector.ModeQuiet, "tui", detector.ModeTUI},
		{"linear overrides", detector.ModeQuiet, "linear", detector.ModeLinear},
		{"ci is alias for linear", detector.ModeQuiet, "ci", detector.ModeLinear},
		{"quiet overrides", detector.ModeLinear, "quiet", detector.ModeQuiet},
		{"unknown keeps detection", detector.ModeLinear, "fancy", detector.ModeLinear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.ResolveMode(tt.autoDetected, tt.userFlag))
		})
	}
}

func TestOutputMode_String(t *testing.T) {
	assert.Equal(t, "auto", detector.ModeAuto.String())
	assert.Equal(t, "tui", detector.ModeTUI.String())
	assert.Equal(t, "linear", detector.ModeLinear.String())
	assert.Equal(t, "quiet", detector.ModeQuiet.String())
}
