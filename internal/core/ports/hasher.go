package ports

// Hasher fingerprints file contents below a set of directories.
type Hasher interface {
	// Snapshot returns the content hash of every file below roots.
	// Directories whose name or absolute path is in skip are not descended.
	Snapshot(roots, skip []string) (map[string]uint64, error)
	// Refresh rehashes paths, updates snapshot in place and reports whether
	// any file appeared, disappeared or changed content.
	Refresh(snapshot map[string]uint64, paths, skip []string) bool
}
