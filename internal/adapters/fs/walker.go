// Package fs walks source trees and fingerprints their contents.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
)

// alwaysSkipped are version control directories never descended.
var alwaysSkipped = []string{".git", ".jj", ".hg", ".svn"}

// Walker yields the files below a directory.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every regular file below root. Paths start with root.
// A directory is skipped when its name matches a pattern in skip or when its
// path equals an absolute entry of skip. Unreadable directories are ignored.
func (w *Walker) WalkFiles(root string, skip []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != root && SkipDir(path, skip) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// SkipDir reports whether the directory at path is excluded by skip.
func SkipDir(path string, skip []string) bool {
	name := filepath.Base(path)
	if slices.Contains(alwaysSkipped, name) {
		return true
	}
	for _, s := range skip {
		if filepath.IsAbs(s) {
			if filepath.Clean(s) == filepath.Clean(path) {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(s, name); matched {
			return true
		}
	}
	return false
}
