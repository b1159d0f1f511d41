// Package config provides the project configuration loader for smelt.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/smelt/internal/adapters/toolchain" //nolint:depguard // Compiler detection picks naming defaults
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     ProjectFS
}

// NewLoader creates a new Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// NewLoaderWithFS creates a new Loader reading from fsys.
func NewLoaderWithFS(logger ports.Logger, fsys ProjectFS) *Loader {
	return &Loader{Logger: logger, FS: fsys}
}

// SupportedVersion is the only project file version understood by this loader.
const SupportedVersion = "1"

var validProjectNameRegex = regexp.MustCompile("^[a-zA-Z0-9_.-]+$")

// Load finds smelt.yaml at or above cwd and returns the validated project.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	root, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(root, domain.ProjectFileName)
	var pf Projectfile
	if err := l.readAndUnmarshalYAML(configPath, &pf); err != nil {
		return nil, err
	}

	if err := validate(&pf); err != nil {
		return nil, zerr.With(err, "file", configPath)
	}

	scripts, err := l.resolveScripts(root, pf.Scripts)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:        pf.Project,
		Root:        root,
		Scripts:     scripts,
		SearchPaths: resolvePaths(root, pf.SearchPaths),
		Toolchain:   toolchainConfig(pf.Toolchain),
		Options:     pf.Options.WithDefaults(),
	}

	buildDir := pf.Build.Dir
	if buildDir == "" {
		buildDir = domain.DefaultBuildDirName
	}
	project.Build = domain.BuildConfig{
		Dir:                    resolvePath(root, buildDir),
		Parallelism:            pf.Build.Parallelism,
		FeatureTestParallelism: pf.Build.FeatureTestParallelism,
		OutputArchive:          pf.Build.OutputArchive,
		GracePeriod:            pf.Build.GracePeriod,
	}
	if pf.Build.CompileCommands != "" {
		project.Build.CompileCommands = resolvePath(root, pf.Build.CompileCommands)
	}
	if project.Build.GracePeriod == 0 {
		project.Build.GracePeriod = domain.DefaultGracePeriod
	}

	return project, nil
}

// DiscoverRoot walks up from cwd to the directory containing smelt.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir := filepath.Clean(cwd)
	for {
		if l.FS.HasProjectFile(currentDir) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

// resolveScripts expands glob patterns. Plain paths are kept even when
// missing so that the script loader reports them.
func (l *Loader) resolveScripts(root string, patterns []string) ([]string, error) {
	var scripts []string
	for _, pattern := range patterns {
		abs := resolvePath(root, pattern)
		if !strings.ContainsAny(pattern, "*?[") {
			scripts = appendUnique(scripts, abs)
			continue
		}

		matches, err := l.FS.GlobFiles(abs)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "pattern", pattern)
		}
		if len(matches) == 0 {
			l.Logger.Warn(fmt.Sprintf("script pattern %q matched no files", pattern))
		}
		for _, m := range matches {
			scripts = appendUnique(scripts, m)
		}
	}
	return scripts, nil
}

func validate(pf *Projectfile) error {
	if pf.Version != "" && pf.Version != SupportedVersion {
		return zerr.With(zerr.With(domain.ErrInvalidConfig, "field", "version"), "version", pf.Version)
	}
	if pf.Project == "" {
		return zerr.With(domain.ErrInvalidConfig, "field", "project")
	}
	if !validProjectNameRegex.MatchString(pf.Project) {
		return zerr.With(zerr.With(domain.ErrInvalidConfig, "field", "project"), "project", pf.Project)
	}
	if len(pf.Scripts) == 0 {
		return zerr.With(domain.ErrInvalidConfig, "field", "scripts")
	}

	switch {
	case pf.Build.Parallelism < 0:
		return zerr.With(domain.ErrInvalidConfig, "field", "build.parallelism")
	case pf.Build.FeatureTestParallelism < 0:
		return zerr.With(domain.ErrInvalidConfig, "field", "build.feature_test_parallelism")
	case pf.Build.GracePeriod < 0:
		return zerr.With(domain.ErrInvalidConfig, "field", "build.grace_period")
	case strings.ContainsAny(pf.Build.OutputArchive, `/\`):
		return zerr.With(domain.ErrInvalidConfig, "field", "build.output_archive")
	}

	if err := pf.Options.Validate(); err != nil {
		return zerr.With(err, "field", "options")
	}
	return nil
}

// toolchainConfig applies platform and naming defaults.
// MSVC-family compilers name archives <output>.lib.
func toolchainConfig(dto ToolchainDTO) domain.ToolchainConfig {
	cfg := domain.ToolchainConfig{
		OS:         dto.OS,
		Arch:       dto.Arch,
		CompilerID: dto.CompilerID,
		CC:         dto.CC,
		CXX:        dto.CXX,
		CFlags:     dto.CFlags,
		CXXFlags:   dto.CXXFlags,
		AR:         dto.AR,
		ARFlags:    dto.ARFlags,
	}
	if cfg.OS == "" {
		cfg.OS = runtime.GOOS
	}
	if cfg.Arch == "" {
		cfg.Arch = runtime.GOARCH
	}
	if len(cfg.CC) == 0 {
		cfg.CC = []string{"cc"}
	}
	if len(cfg.CXX) == 0 {
		cfg.CXX = []string{"c++"}
	}
	if cfg.CompilerID == "" {
		cfg.CompilerID = toolchain.DetectCompilerID(cfg.CC[0], cfg.CXX[0])
	}

	msvc := cfg.CompilerID == domain.CompilerMSVC
	if len(cfg.AR) == 0 {
		cfg.AR = []string{"ar"}
		if msvc {
			cfg.AR = []string{"lib"}
		}
	}
	if dto.ARFlags == nil && !msvc {
		cfg.ARFlags = []string{"rcs"}
	}

	cfg.LibPrefix, cfg.LibExtension = "lib", ".a"
	if msvc {
		cfg.LibPrefix, cfg.LibExtension = "", ".lib"
	}
	if dto.LibPrefix != nil {
		cfg.LibPrefix = *dto.LibPrefix
	}
	if dto.LibExtension != nil {
		cfg.LibExtension = *dto.LibExtension
	}
	return cfg
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(root, path))
}

func resolvePaths(root string, paths []string) []string {
	var out []string
	for _, p := range paths {
		out = appendUnique(out, resolvePath(root, p))
	}
	return out
}

func appendUnique(dst []string, v string) []string {
	if slices.Contains(dst, v) {
		return dst
	}
	return append(dst, v)
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func (l *Loader) readAndUnmarshalYAML(configPath string, target any) error {
	data, err := l.FS.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "file", configPath)
	}

	if parseErr := yaml.Unmarshal(data, target); parseErr != nil {
		return zerr.With(zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error()), "file", configPath)
	}

	return nil
}
