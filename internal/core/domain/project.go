package domain

import (
	"path/filepath"
	"time"
)

// DefaultGracePeriod bounds how long in-flight processes may run after cancellation.
const DefaultGracePeriod = 30 * time.Second

// ToolchainConfig describes the compiler and archiver for one platform.
type ToolchainConfig struct {
	OS           string
	Arch         string
	CompilerID   string
	CC           []string
	CXX          []string
	CFlags       []string
	CXXFlags     []string
	AR           []string
	ARFlags      []string
	LibPrefix    string
	LibExtension string
}

// BuildConfig holds the knobs of one build run.
type BuildConfig struct {
	// Dir is the absolute build directory.
	Dir string
	// Parallelism bounds the compile worker pool. Zero means host parallelism.
	Parallelism int
	// FeatureTestParallelism bounds concurrent probes. Zero means host parallelism.
	FeatureTestParallelism int
	// CompileCommands is the absolute path of compile_commands.json, empty to disable.
	CompileCommands string
	// OutputArchive, when set, replaces every target's output name so all targets share one archive.
	OutputArchive string
	// GracePeriod bounds in-flight processes after cancellation.
	GracePeriod time.Duration
}

// Project is a loaded smelt.yaml.
type Project struct {
	Name        string
	Root        string
	Scripts     []string
	SearchPaths []string
	Toolchain   ToolchainConfig
	Build       BuildConfig
	Options     Options
}

// Layout returns the artifact layout of the project.
func (p *Project) Layout() Layout {
	dir := p.Build.Dir
	if dir == "" {
		dir = filepath.Join(p.Root, DefaultBuildDirName)
	}
	return NewLayout(dir)
}
