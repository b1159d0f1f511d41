package fs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher fingerprints files with xxhash.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the xxhash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return digest.Sum64(), nil
}

// Snapshot hashes every file below roots. Missing roots are ignored.
func (h *Hasher) Snapshot(roots, skip []string) (map[string]uint64, error) {
	snapshot := make(map[string]uint64)
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		for path := range h.walker.WalkFiles(root, skip) {
			sum, err := h.ComputeFileHash(path)
			if err != nil {
				return nil, err
			}
			snapshot[path] = sum
		}
	}
	return snapshot, nil
}

// Refresh rehashes paths against snapshot. Directories are rehashed file by
// file; files below a skipped directory are left alone.
func (h *Hasher) Refresh(snapshot map[string]uint64, paths, skip []string) bool {
	changed := false
	for _, path := range paths {
		if Excluded(path, skip) {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			changed = forget(snapshot, path) || changed
			continue
		}

		if info.IsDir() {
			for file := range h.walker.WalkFiles(path, skip) {
				changed = h.refreshFile(snapshot, file) || changed
			}
			continue
		}
		changed = h.refreshFile(snapshot, path) || changed
	}
	return changed
}

func (h *Hasher) refreshFile(snapshot map[string]uint64, path string) bool {
	sum, err := h.ComputeFileHash(path)
	if err != nil {
		return forget(snapshot, path)
	}
	prev, ok := snapshot[path]
	snapshot[path] = sum
	return !ok || prev != sum
}

// forget removes path and everything below it from snapshot.
func forget(snapshot map[string]uint64, path string) bool {
	removed := false
	prefix := path + string(filepath.Separator)
	for p := range snapshot {
		if p == path || len(p) > len(prefix) && p[:len(prefix)] == prefix {
			delete(snapshot, p)
			removed = true
		}
	}
	return removed
}

// Excluded reports whether path or any directory above it is excluded by skip.
func Excluded(path string, skip []string) bool {
	for dir := path; ; dir = filepath.Dir(dir) {
		if SkipDir(dir, skip) {
			return true
		}
		if parent := filepath.Dir(dir); parent == dir {
			return false
		}
	}
}
