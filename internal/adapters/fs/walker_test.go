package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/smelt/internal/adapters/fs"
)

// writeTree creates files (relative path -> content) below root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func TestWalker_WalkFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"targets.yaml":         "targets: []",
		"zlib/adler32.c":       "int a;",
		"zlib/zconf.h.cmakein": "#cmakedefine Z_HAVE_UNISTD_H",
		".git/config":          "[core]",
		".jj/store":            "x",
		"build/obj/z/a.o":      "obj",
		"node_cache/tmp":       "x",
	})

	files := slices.Collect(fs.NewWalker().WalkFiles(root, []string{filepath.Join(root, "build"), "node_*"}))
	slices.Sort(files)

	assert.Equal(t, []string{
		filepath.Join(root, "targets.yaml"),
		filepath.Join(root, "zlib", "adler32.c"),
		filepath.Join(root, "zlib", "zconf.h.cmakein"),
	}, files)
}

func TestWalker_EarlyExit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.c": "", "b.c": "", "c.c": ""})

	count := 0
	for range fs.NewWalker().WalkFiles(root, nil) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestSkipDir(t *testing.T) {
	tests := []struct {
		path string
		skip []string
		want bool
	}{
		{"/src/.git", nil, true},
		{"/src/zlib", nil, false},
		{"/src/build", []string{"/src/build"}, true},
		{"/other/build", []string{"/src/build"}, false},
		{"/src/cmake-build-debug", []string{"cmake-build-*"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, fs.SkipDir(filepath.FromSlash(tt.path), tt.skip))
		})
	}
}
