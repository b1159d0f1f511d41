// Package descriptor loads target descriptions from YAML and HCL scripts.
package descriptor

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TargetLoader = (*Set)(nil)

// Set dispatches scripts to the loader registered for their extension.
type Set struct {
	loaders map[string]ports.TargetLoader
}

// NewSet creates a Set. Later loaders win on a shared extension.
func NewSet(loaders ...ports.TargetLoader) *Set {
	s := &Set{loaders: make(map[string]ports.TargetLoader)}
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			s.loaders[ext] = l
		}
	}
	return s
}

// Extensions lists every handled extension in sorted order.
func (s *Set) Extensions() []string {
	exts := make([]string, 0, len(s.loaders))
	for ext := range s.loaders {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Load evaluates the script at path with the loader for its extension.
func (s *Set) Load(ctx context.Context, path string, platform domain.Platform) ([]*domain.Target, error) {
	l, ok := s.loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, zerr.With(domain.ErrUnsupportedScript, "script", path)
	}
	return l.Load(ctx, path, platform)
}

// match reports whether every non-empty constraint holds for platform.
func match(platform domain.Platform, oses, arches, compilers []string, variant string, features []string) bool {
	switch {
	case len(oses) > 0 && !slices.Contains(oses, platform.OS):
		return false
	case len(arches) > 0 && !slices.Contains(arches, platform.Arch):
		return false
	case len(compilers) > 0 && !slices.Contains(compilers, platform.CompilerID):
		return false
	case variant != "" && variant != platform.Options.Variant:
		return false
	}
	for _, f := range features {
		if !platform.Options.Features[f] {
			return false
		}
	}
	return true
}

// resolveRoot makes root absolute against the script directory.
func resolveRoot(script, root string) string {
	dir := filepath.Dir(script)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if root == "" {
		return dir
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	return filepath.Join(dir, root)
}
