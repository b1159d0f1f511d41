package config

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/smelt/internal/core/domain"
)

// ProjectFS is the filesystem view the project loader needs: finding
// smelt.yaml, reading it and expanding script globs.
type ProjectFS interface {
	// HasProjectFile reports whether dir contains a regular smelt.yaml.
	HasProjectFile(dir string) bool
	// ReadFile reads the file at the absolute path name.
	ReadFile(name string) ([]byte, error)
	// GlobFiles returns the regular files matching an absolute pattern,
	// sorted lexically. Directories are skipped.
	GlobFiles(pattern string) ([]string, error)
}

type osFS struct{}

// NewOSFS returns a ProjectFS backed by the host filesystem.
func NewOSFS() ProjectFS {
	return osFS{}
}

func (osFS) HasProjectFile(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, domain.ProjectFileName))
	return err == nil && info.Mode().IsRegular()
}

func (osFS) ReadFile(name string) ([]byte, error) {
	// #nosec G304 -- project and script paths come from the user's own checkout
	return os.ReadFile(name)
}

func (osFS) GlobFiles(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	return regularOnly(matches, os.Stat), nil
}

// memFS serves absolute host paths out of an fs.FS whose root is "/".
type memFS struct {
	fsys fs.FS
}

// NewMemFS returns a ProjectFS over fsys, where "work/demo/smelt.yaml" in
// fsys answers for "/work/demo/smelt.yaml".
func NewMemFS(fsys fs.FS) ProjectFS {
	return memFS{fsys: fsys}
}

func (m memFS) HasProjectFile(dir string) bool {
	info, err := fs.Stat(m.fsys, m.rel(filepath.Join(dir, domain.ProjectFileName)))
	return err == nil && info.Mode().IsRegular()
}

func (m memFS) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(m.fsys, m.rel(name))
}

func (m memFS) GlobFiles(pattern string) ([]string, error) {
	matches, err := fs.Glob(m.fsys, m.rel(pattern))
	if err != nil {
		return nil, err
	}
	for i, match := range matches {
		matches[i] = filepath.FromSlash("/" + match)
	}
	return regularOnly(matches, func(name string) (fs.FileInfo, error) {
		return fs.Stat(m.fsys, m.rel(name))
	}), nil
}

// rel maps an absolute host path onto an fs.FS name.
func (m memFS) rel(name string) string {
	name = filepath.ToSlash(strings.TrimPrefix(name, filepath.VolumeName(name)))
	name = strings.TrimPrefix(path.Clean(name), "/")
	if name == "" {
		return "."
	}
	return name
}

func regularOnly(matches []string, stat func(string) (fs.FileInfo, error)) []string {
	files := matches[:0]
	for _, m := range matches {
		if info, err := stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	slices.Sort(files)
	return files
}
