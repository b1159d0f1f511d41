package domain

import "time"

// Report is a read-only snapshot of a finished build.
type Report struct {
	Project      string          `json:"project"`
	StartedAt    time.Time       `json:"started_at"`
	Duration     time.Duration   `json:"duration"`
	Succeeded    bool            `json:"succeeded"`
	Toolchain    ToolchainInfo   `json:"toolchain"`
	Targets      []TargetReport  `json:"targets"`
	FeatureTests []FeatureReport `json:"feature_tests"`
	Archives     []ArchiveReport `json:"archives"`
	Errors       []string        `json:"errors,omitempty"`
}

// TargetReport summarizes one target.
type TargetReport struct {
	Name               string         `json:"name"`
	Dependencies       []string       `json:"dependencies,omitempty"`
	SystemDependencies []string       `json:"system_dependencies,omitempty"`
	Generated          []FileReport   `json:"generated,omitempty"`
	Sources            []SourceReport `json:"sources"`
}

// FileReport summarizes one generated file.
type FileReport struct {
	Template string        `json:"template"`
	Output   string        `json:"output"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// SourceReport summarizes one compiled source.
type SourceReport struct {
	Source   string        `json:"source"`
	Object   string        `json:"object"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Command  []string      `json:"command,omitempty"`
	Log      string        `json:"log,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// FeatureReport summarizes one deduplicated feature test.
type FeatureReport struct {
	Fingerprint string          `json:"fingerprint"`
	Type        FeatureTestType `json:"type"`
	Variables   []string        `json:"variables"`
	Requesters  []string        `json:"requesters"`
	Available   bool            `json:"available"`
	Duration    time.Duration   `json:"duration"`
	Log         string          `json:"log,omitempty"`
}

// ArchiveReport summarizes one archive.
type ArchiveReport struct {
	Output     string        `json:"output"`
	Targets    []string      `json:"targets"`
	Status     Status        `json:"status"`
	Duration   time.Duration `json:"duration"`
	Log        string        `json:"log,omitempty"`
	SkipReason string        `json:"skip_reason,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Counts returns the number of succeeded, failed and skipped sources.
func (r *Report) Counts() (succeeded, failed, skipped int) {
	for _, t := range r.Targets {
		for _, s := range t.Sources {
			switch s.Status {
			case StatusSucceeded:
				succeeded++
			case StatusFailed:
				failed++
			case StatusSkipped:
				skipped++
			}
		}
	}
	return succeeded, failed, skipped
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewSourceReport snapshots a compile result.
func NewSourceReport(res CompileResult) SourceReport {
	log := res.Stdout
	if res.Stderr != "" {
		if log != "" {
			log += "\n"
		}
		log += res.Stderr
	}
	return SourceReport{
		Source:   res.Source,
		Object:   res.Object,
		Status:   res.Status,
		Duration: res.Duration,
		Command:  res.Command,
		Log:      log,
		Error:    errString(res.Err),
	}
}

// NewFileReport snapshots a generated file.
func NewFileReport(g *GeneratedFile) FileReport {
	return FileReport{
		Template: g.Template,
		Output:   g.Output,
		Status:   g.Result.Status,
		Duration: g.Result.Duration,
		Error:    errString(g.Result.Err),
	}
}

// NewArchiveReport snapshots an archive task.
func NewArchiveReport(a *ArchiveTask) ArchiveReport {
	return ArchiveReport{
		Output:     a.Output,
		Targets:    a.Targets(),
		Status:     a.Result.Status,
		Duration:   a.Result.Duration,
		Log:        a.Result.Log,
		SkipReason: a.Result.SkipReason,
		Error:      errString(a.Result.Err),
	}
}

// NewFeatureReport snapshots a feature test task.
func NewFeatureReport(t *FeatureTestTask) FeatureReport {
	res, _ := t.Result()
	rep := FeatureReport{
		Fingerprint: t.Fingerprint,
		Type:        t.Test.Type,
		Available:   res.Available,
		Duration:    res.Duration,
		Log:         res.Log,
	}
	for _, target := range t.Requesters() {
		rep.Requesters = append(rep.Requesters, target.String())
		rep.Variables = appendUnique(rep.Variables, t.Variables(target)...)
	}
	return rep
}
