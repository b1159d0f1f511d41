package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/smelt/internal/ui/style"
)

// View renders the UI.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.taskList(),
		m.logPane(),
	)
}

func (m *Model) taskList() string {
	var s strings.Builder

	done, failed := 0, 0
	for _, t := range m.Tasks {
		switch t.Status {
		case StatusDone:
			done++
		case StatusFailed:
			failed++
		}
	}

	title := titleStyle.Render(fmt.Sprintf("TASKS %d/%d", done+failed, len(m.Tasks)))
	if failed > 0 {
		title = failureTitleStyle.Render(fmt.Sprintf("TASKS %d/%d, %d failed", done+failed, len(m.Tasks), failed))
	}
	s.WriteString(title + "\n\n")

	end := min(m.ListOffset+m.ListHeight, len(m.Tasks))
	start := min(m.ListOffset, end)
	for i := start; i < end; i++ {
		s.WriteString(m.renderTaskRow(i, m.Tasks[i]) + "\n")
	}

	return listStyle.Width(m.ListWidth).Render(s.String())
}

func (m *Model) renderTaskRow(index int, task *TaskNode) string {
	rowStyle := taskStyle(task)

	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		if task.Status == StatusPending || task.Status == StatusRunning {
			rowStyle = selectedStyle
		}
	}

	content := taskIcon(task) + " " + task.Name
	if d := task.Duration(); d > 0 {
		content += " " + d.Round(time.Millisecond).String()
	}
	return cursor + rowStyle.Render(content)
}

func taskIcon(task *TaskNode) string {
	return task.Status.state().Glyph()
}

func (s TaskStatus) state() style.State {
	switch s {
	case StatusRunning:
		return style.Running
	case StatusDone:
		return style.Done
	case StatusFailed:
		return style.Failed
	default:
		return style.Pending
	}
}

func taskStyle(task *TaskNode) lipgloss.Style {
	switch task.Status {
	case StatusRunning:
		return taskRunningStyle
	case StatusDone:
		return taskDoneStyle
	case StatusFailed:
		return taskFailedStyle
	default:
		return taskPendingStyle
	}
}

func (m *Model) logPane() string {
	node := m.Selected()
	if node == nil {
		return logStyle.Render(titleStyle.Render("LOGS (Waiting...)"))
	}

	mode := " (Manual)"
	if m.FollowMode {
		mode = " (Following)"
	}
	header := titleStyle.Render("LOGS: " + node.Name + mode)
	if node.Status == StatusFailed {
		header = failureTitleStyle.Render("LOGS: " + node.Name + mode)
	}

	content := node.Term.View()
	if node.Term.Empty() && node.Err != nil {
		content = node.Err.Error()
	}

	return logStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			content,
		),
	)
}
