// Package detector selects the output mode from the environment.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode represents how build progress is rendered.
type OutputMode int

const (
	// ModeAuto selects a mode from the environment.
	ModeAuto OutputMode = iota
	// ModeTUI renders an interactive task list with per-task output.
	ModeTUI
	// ModeLinear prints every unit of work as it starts and completes.
	ModeLinear
	// ModeQuiet prints only compiler output and failures.
	ModeQuiet
)

// String returns the flag value naming m.
func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeLinear:
		return "linear"
	case ModeQuiet:
		return "quiet"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the recommended output mode for the current process.
func DetectEnvironment() OutputMode {
	return Detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv)
}

// Detect returns ModeLinear in CI, ModeTUI on an interactive terminal and
// ModeQuiet otherwise.
func Detect(isTTY bool, getenv func(string) string) OutputMode {
	ci := getenv("CI")
	switch {
	case ci == "true" || ci == "1":
		return ModeLinear
	case isTTY:
		return ModeTUI
	default:
		return ModeQuiet
	}
}

// ResolveMode applies the user's flag to the detected mode.
// userFlag is one of "auto", "tui", "linear", "ci", "quiet" or empty; unknown
// values keep the detected mode.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "tui":
		return ModeTUI
	case "linear", "ci":
		return ModeLinear
	case "quiet":
		return ModeQuiet
	default:
		return autoDetected
	}
}
