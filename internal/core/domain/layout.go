package domain

import "path/filepath"

const (
	// ProjectFileName is the name of the project configuration file.
	ProjectFileName = "smelt.yaml"

	// DefaultBuildDirName is the default build directory, relative to the project root.
	DefaultBuildDirName = "build"

	// GenDirName holds generated files, one subdirectory per target.
	GenDirName = "gen"

	// ObjDirName holds object files, one subdirectory per target.
	ObjDirName = "obj"

	// LibDirName holds the produced archives.
	LibDirName = "lib"

	// TmpDirName holds scratch files such as feature test probes.
	TmpDirName = "tmp"

	// FeatureTestDirName is the probe directory below TmpDirName.
	FeatureTestDirName = "feature_tests"

	// ReportFileName is the name of the persisted build report.
	ReportFileName = "report.json"

	// GenPathVar is expanded to the target's generated-file directory in descriptor paths.
	GenPathVar = "${gen}"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Layout describes where build artifacts are placed.
type Layout struct {
	// BuildDir is the absolute build directory.
	BuildDir string
}

// NewLayout returns a Layout rooted at buildDir.
func NewLayout(buildDir string) Layout {
	return Layout{BuildDir: filepath.Clean(buildDir)}
}

// GenDir returns the root of all generated files.
func (l Layout) GenDir() string {
	return filepath.Join(l.BuildDir, GenDirName)
}

// TargetGenDir returns the generated-file directory of one target.
func (l Layout) TargetGenDir(target string) string {
	return filepath.Join(l.BuildDir, GenDirName, target)
}

// ObjDir returns the root of all object files.
func (l Layout) ObjDir() string {
	return filepath.Join(l.BuildDir, ObjDirName)
}

// TargetObjDir returns the object directory of one target.
func (l Layout) TargetObjDir(target string) string {
	return filepath.Join(l.BuildDir, ObjDirName, target)
}

// LibDir returns the archive output directory.
func (l Layout) LibDir() string {
	return filepath.Join(l.BuildDir, LibDirName)
}

// FeatureTestDir returns the directory for feature test probes.
func (l Layout) FeatureTestDir() string {
	return filepath.Join(l.BuildDir, TmpDirName, FeatureTestDirName)
}

// ReportPath returns the path of the persisted report.
func (l Layout) ReportPath() string {
	return filepath.Join(l.BuildDir, ReportFileName)
}
