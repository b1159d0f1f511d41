package domain

// Status is the lifecycle state of a unit of build work.
type Status string

const (
	// StatusPending means the work has not started.
	StatusPending Status = "pending"
	// StatusRunning means the work is executing.
	StatusRunning Status = "running"
	// StatusSucceeded means the work finished successfully.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the work finished with an error.
	StatusFailed Status = "failed"
	// StatusSkipped means the work was never attempted.
	StatusSkipped Status = "skipped"
)

// IsTerminal reports whether s is a final state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}
