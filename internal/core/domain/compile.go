package domain

import (
	"sync"
	"time"
)

// SourceFile is one translation unit of a CompileTask.
type SourceFile struct {
	Path     string
	Object   string
	Language Language
}

// CommandResult is the captured outcome of one subprocess invocation.
type CommandResult struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error
}

// Log returns stdout and stderr combined for display.
func (r CommandResult) Log() string {
	switch {
	case r.Stdout == "":
		return r.Stderr
	case r.Stderr == "":
		return r.Stdout
	default:
		return r.Stdout + "\n" + r.Stderr
	}
}

// CompileRequest describes one compiler invocation.
type CompileRequest struct {
	Dir         string
	Source      string
	Object      string
	Language    Language
	IncludeDirs []string
	Definitions []string
	ExtraFlags  []string
}

// CompileResult is the recorded outcome for one source.
type CompileResult struct {
	Source   string
	Object   string
	Status   Status
	Command  []string
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error
}

// CompileTask holds everything needed to compile one target.
type CompileTask struct {
	Target       InternedString
	Root         string
	ObjDir       string
	LibPath      string
	Sources      []SourceFile
	IncludeDirs  []string
	Definitions  []string
	Dependencies []*CompileTask
	Generated    []*GeneratedFile

	mu      sync.Mutex
	results map[string]CompileResult
}

// NewCompileTask creates an empty task for target.
func NewCompileTask(target InternedString) *CompileTask {
	return &CompileTask{
		Target:  target,
		results: make(map[string]CompileResult),
	}
}

// Record stores the result for a source. It is safe for concurrent use.
func (t *CompileTask) Record(res CompileResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.results == nil {
		t.results = make(map[string]CompileResult)
	}
	t.results[res.Source] = res
}

// Result returns the recorded result for source.
func (t *CompileTask) Result(source string) (CompileResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	res, ok := t.results[source]
	return res, ok
}

// Results returns the recorded results in source order.
func (t *CompileTask) Results() []CompileResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]CompileResult, 0, len(t.results))
	for _, src := range t.Sources {
		if res, ok := t.results[src.Path]; ok {
			out = append(out, res)
		}
	}
	return out
}

// Succeeded reports whether every source compiled.
func (t *CompileTask) Succeeded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Sources) == 0 {
		return false
	}
	for _, src := range t.Sources {
		if res, ok := t.results[src.Path]; !ok || res.Status != StatusSucceeded {
			return false
		}
	}
	return true
}

// Objects returns the object files of successfully compiled sources in source order.
func (t *CompileTask) Objects() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, src := range t.Sources {
		if res, ok := t.results[src.Path]; ok && res.Status == StatusSucceeded {
			out = append(out, res.Object)
		}
	}
	return out
}

// GenerationSucceeded reports whether every generated file the task depends on was produced.
func (t *CompileTask) GenerationSucceeded() bool {
	for _, g := range t.Generated {
		if g.Result.Status != StatusSucceeded {
			return false
		}
	}
	return true
}
