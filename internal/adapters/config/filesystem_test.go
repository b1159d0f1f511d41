package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/smelt/internal/adapters/config"
	"go.trai.ch/smelt/internal/core/domain"
)

func TestOSFS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ports", "dir.hcl"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ports", "zlib.hcl"), []byte("z"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ports", "bzip2.hcl"), nil, 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested", domain.ProjectFileName), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ProjectFileName), nil, 0o600))

	fsys := config.NewOSFS()

	assert.True(t, fsys.HasProjectFile(dir))
	assert.False(t, fsys.HasProjectFile(filepath.Join(dir, "nested")), "a directory named smelt.yaml is not a project")
	assert.False(t, fsys.HasProjectFile(filepath.Join(dir, "ports")))

	got, err := fsys.GlobFiles(filepath.Join(dir, "ports", "*.hcl"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "ports", "bzip2.hcl"),
		filepath.Join(dir, "ports", "zlib.hcl"),
	}, got)

	data, err := fsys.ReadFile(filepath.Join(dir, "ports", "zlib.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "z", string(data))

	_, err = fsys.GlobFiles(filepath.Join(dir, "["))
	require.Error(t, err)
}

func TestMemFS(t *testing.T) {
	fsys := config.NewMemFS(fstest.MapFS{
		"work/demo/smelt.yaml":        file("project: demo\n"),
		"work/demo/ports/zlib.hcl":    file(""),
		"work/demo/ports/old.hcl/a.c": file(""),
		"work/other/smelt.yaml/x":     file(""),
	})

	assert.True(t, fsys.HasProjectFile(root))
	assert.False(t, fsys.HasProjectFile("/work/other"))
	assert.False(t, fsys.HasProjectFile("/"))

	got, err := fsys.GlobFiles(filepath.Join(root, "ports", "*.hcl"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "ports", "zlib.hcl")}, got)

	data, err := fsys.ReadFile(filepath.Join(root, domain.ProjectFileName))
	require.NoError(t, err)
	assert.Equal(t, "project: demo\n", string(data))

	_, err = fsys.ReadFile(filepath.Join(root, "missing.yaml"))
	require.Error(t, err)
}
