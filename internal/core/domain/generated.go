package domain

import "time"

// GenerationResult is the outcome of rendering one generated file.
type GenerationResult struct {
	Status   Status
	Duration time.Duration
	Err      error
}

// GeneratedFile is a resolved generation request owned by one target.
type GeneratedFile struct {
	Target      InternedString
	Template    string
	Output      string
	Kind        GeneratorKind
	Definitions map[string]any
	Result      GenerationResult
}
