package config

import (
	"time"

	"go.trai.ch/smelt/internal/core/domain"
)

// Projectfile represents the structure of the smelt.yaml configuration file.
type Projectfile struct {
	Version     string         `yaml:"version"`
	Project     string         `yaml:"project"`
	Scripts     []string       `yaml:"scripts"`
	SearchPaths []string       `yaml:"search_paths"`
	Toolchain   ToolchainDTO   `yaml:"toolchain"`
	Build       BuildDTO       `yaml:"build"`
	Options     domain.Options `yaml:"options"`
}

// ToolchainDTO represents the toolchain section.
// Library naming fields are pointers so an explicit empty prefix survives defaulting.
type ToolchainDTO struct {
	OS           string   `yaml:"os"`
	Arch         string   `yaml:"arch"`
	CompilerID   string   `yaml:"compiler_id"`
	CC           []string `yaml:"cc"`
	CXX          []string `yaml:"cxx"`
	CFlags       []string `yaml:"cflags"`
	CXXFlags     []string `yaml:"cxxflags"`
	AR           []string `yaml:"ar"`
	ARFlags      []string `yaml:"arflags"`
	LibPrefix    *string  `yaml:"lib_prefix"`
	LibExtension *string  `yaml:"lib_extension"`
}

// BuildDTO represents the build section.
type BuildDTO struct {
	Dir                    string        `yaml:"dir"`
	Parallelism            int           `yaml:"parallelism"`
	FeatureTestParallelism int           `yaml:"feature_test_parallelism"`
	CompileCommands        string        `yaml:"compile_commands"`
	OutputArchive          string        `yaml:"output_archive"`
	GracePeriod            time.Duration `yaml:"grace_period"`
}
