package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/smelt/internal/ui/style"
)

var (
	taskPendingStyle = lipgloss.NewStyle().
				Foreground(style.Pending.Color())

	taskRunningStyle = lipgloss.NewStyle().
				Foreground(style.Running.Color()).
				Bold(true)

	taskDoneStyle = lipgloss.NewStyle().
			Foreground(style.Done.Color())

	taskFailedStyle = lipgloss.NewStyle().
			Foreground(style.Failed.Color())

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Accent).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Accent).
			Foreground(style.OnAccent)

	failureTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(style.Failed.Color()).
				Foreground(style.OnAccent)

	listStyle = lipgloss.NewStyle().
			PaddingRight(1)

	logStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(style.Muted).
			PaddingLeft(1)
)
