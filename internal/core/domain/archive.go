package domain

import "time"

// ArchiveResult is the recorded outcome of one archiver invocation.
type ArchiveResult struct {
	Status     Status
	Command    []string
	Log        string
	Duration   time.Duration
	SkipReason string
	Err        error
}

// ArchiveTask links the objects of one or more CompileTasks into a static archive.
type ArchiveTask struct {
	Output  string
	Sources []*CompileTask
	Objects []string
	Result  ArchiveResult
}

// Targets returns the names of the contributing targets.
func (a *ArchiveTask) Targets() []string {
	names := make([]string, len(a.Sources))
	for i, t := range a.Sources {
		names[i] = t.Target.String()
	}
	return names
}
