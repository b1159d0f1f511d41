package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	taskListWidthRatio = 0.3
	// logPaneChrome is the width taken by the log pane's border and padding.
	logPaneChrome = 2
)

// TaskStatus represents the current state of a unit of work.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to start.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusDone indicates the task completed successfully.
	StatusDone TaskStatus = "Done"
	// StatusFailed indicates the task failed.
	StatusFailed TaskStatus = "Failed"
)

// TaskNode represents a single unit of work in the task list.
type TaskNode struct {
	Name   string
	Status TaskStatus
	Term   *Vterm
	Start  time.Time
	End    time.Time
	Err    error
}

// Duration returns how long the task ran, or zero when it has not finished.
func (n *TaskNode) Duration() time.Duration {
	if n.Start.IsZero() || n.End.IsZero() {
		return 0
	}
	return n.End.Sub(n.Start)
}

// PlanMsg announces the work a stage is about to run.
type PlanMsg struct {
	Stage string
	Tasks []string
}

// TaskStartMsg reports that a unit of work began.
type TaskStartMsg struct {
	SpanID    string
	ParentID  string
	Name      string
	StartTime time.Time
}

// TaskLogMsg carries output of a running unit of work.
type TaskLogMsg struct {
	SpanID string
	Data   []byte
}

// TaskCompleteMsg reports that a unit of work finished.
type TaskCompleteMsg struct {
	SpanID  string
	EndTime time.Time
	Err     error
}

// Model is the Bubble Tea model of the build view: a task list on the left
// and the output of the selected task on the right.
type Model struct {
	Tasks   []*TaskNode
	TaskMap map[string]*TaskNode
	SpanMap map[string]*TaskNode

	SelectedIdx int
	ListOffset  int
	ListHeight  int
	ListWidth   int
	LogWidth    int
	LogHeight   int
	// FollowMode selects every task as it starts.
	FollowMode bool
	// Interrupted is set when the user quit before the build finished.
	Interrupted bool
}

// NewModel creates an empty model in follow mode.
func NewModel() *Model {
	return &Model{
		TaskMap:    make(map[string]*TaskNode),
		SpanMap:    make(map[string]*TaskNode),
		FollowMode: true,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // message dispatch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case PlanMsg:
		for _, name := range msg.Tasks {
			m.task(name)
		}

	case TaskStartMsg:
		node := m.task(msg.Name)
		node.Status = StatusRunning
		node.Start = msg.StartTime
		m.SpanMap[msg.SpanID] = node

		if m.FollowMode {
			m.selectTask(node)
		}

	case TaskLogMsg:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Term.Write(msg.Data)
		}

	case TaskCompleteMsg:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			node.End = msg.EndTime
			node.Err = msg.Err
			node.Status = StatusDone
			if msg.Err != nil {
				node.Status = StatusFailed
			}
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.Interrupted = true
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.FollowMode = false
			m.ensureVisible()
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Tasks)-1 {
			m.SelectedIdx++
			m.FollowMode = false
			m.ensureVisible()
		}
	case "esc":
		m.FollowMode = true
		for i := len(m.Tasks) - 1; i >= 0; i-- {
			if m.Tasks[i].Status == StatusRunning {
				m.selectTask(m.Tasks[i])
				break
			}
		}
	case "pgup":
		if node := m.Selected(); node != nil {
			node.Term.Scroll(-m.LogHeight)
		}
	case "pgdown":
		if node := m.Selected(); node != nil {
			node.Term.Scroll(m.LogHeight)
		}
	case "end":
		if node := m.Selected(); node != nil {
			node.Term.ScrollToBottom()
		}
	}
	return nil
}

// Selected returns the task whose output is shown, or nil.
func (m *Model) Selected() *TaskNode {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Tasks) {
		return m.Tasks[m.SelectedIdx]
	}
	return nil
}

// task returns the node named name, appending a pending one if needed.
func (m *Model) task(name string) *TaskNode {
	if node, ok := m.TaskMap[name]; ok {
		return node
	}

	term := NewVterm()
	if m.LogWidth > 0 && m.LogHeight > 0 {
		term.Resize(m.LogWidth, m.LogHeight)
	}
	node := &TaskNode{Name: name, Status: StatusPending, Term: term}
	m.Tasks = append(m.Tasks, node)
	m.TaskMap[name] = node
	return node
}

func (m *Model) selectTask(node *TaskNode) {
	for i, t := range m.Tasks {
		if t == node {
			m.SelectedIdx = i
			break
		}
	}
	m.ensureVisible()
	node.Term.ScrollToBottom()
}

func (m *Model) resize(width, height int) {
	m.ListWidth = int(float64(width) * taskListWidthRatio)
	m.LogWidth = max(width-m.ListWidth-logPaneChrome, 1)

	titleHeight := lipgloss.Height(titleStyle.Render("TASKS"))
	m.LogHeight = max(height-titleHeight, 1)
	// The list title is followed by a blank line.
	m.ListHeight = max(height-titleHeight-1, 1)
	m.ensureVisible()

	for _, node := range m.Tasks {
		node.Term.Resize(m.LogWidth, m.LogHeight)
	}
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}
