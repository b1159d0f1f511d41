package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/smelt/internal/adapters/config"
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const root = "/work/demo"

func newLoader(t *testing.T, files fstest.MapFS) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	return config.NewLoaderWithFS(log, config.NewMemFS(files)), log
}

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func TestLoader_Load_Full(t *testing.T) {
	loader, _ := newLoader(t, fstest.MapFS{
		"work/demo/smelt.yaml": file(`
version: "1"
project: demo
scripts: [targets.yaml, third_party/zlib.hcl]
search_paths: [third_party, /opt/smelt/ports]
toolchain:
  os: windows
  arch: arm64
  cc: [x86_64-w64-mingw32-gcc]
  cxx: [x86_64-w64-mingw32-g++]
  cflags: [-O2]
  ar: [x86_64-w64-mingw32-ar]
  lib_extension: .lib.a
build:
  dir: out
  parallelism: 4
  feature_test_parallelism: 2
  compile_commands: compile_commands.json
  output_archive: bundle
  grace_period: 5s
options:
  variant: debug
  features: {png: true}
  defines: [SMELT_BUILD, LEVEL=2]
`),
		"work/demo/src/main.c": file("int main(void) { return 0; }\n"),
	})

	project, err := loader.Load(filepath.Join(root, "src"))
	require.NoError(t, err)

	assert.Equal(t, &domain.Project{
		Name: "demo",
		Root: root,
		Scripts: []string{
			filepath.Join(root, "targets.yaml"),
			filepath.Join(root, "third_party", "zlib.hcl"),
		},
		SearchPaths: []string{filepath.Join(root, "third_party"), "/opt/smelt/ports"},
		Toolchain: domain.ToolchainConfig{
			OS:           "windows",
			Arch:         "arm64",
			CompilerID:   domain.CompilerGCC,
			CC:           []string{"x86_64-w64-mingw32-gcc"},
			CXX:          []string{"x86_64-w64-mingw32-g++"},
			CFlags:       []string{"-O2"},
			AR:           []string{"x86_64-w64-mingw32-ar"},
			ARFlags:      []string{"rcs"},
			LibPrefix:    "lib",
			LibExtension: ".lib.a",
		},
		Build: domain.BuildConfig{
			Dir:                    filepath.Join(root, "out"),
			Parallelism:            4,
			FeatureTestParallelism: 2,
			CompileCommands:        filepath.Join(root, "compile_commands.json"),
			OutputArchive:          "bundle",
			GracePeriod:            5 * time.Second,
		},
		Options: domain.Options{
			Variant:  domain.VariantDebug,
			Features: map[string]bool{"png": true},
			Defines:  []string{"SMELT_BUILD", "LEVEL=2"},
		},
	}, project)
}

func TestLoader_Load_Defaults(t *testing.T) {
	loader, _ := newLoader(t, fstest.MapFS{
		"work/demo/smelt.yaml": file("project: demo\nscripts: [targets.yaml]\n"),
	})

	project, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, runtime.GOOS, project.Toolchain.OS)
	assert.Equal(t, runtime.GOARCH, project.Toolchain.Arch)
	assert.Equal(t, []string{"cc"}, project.Toolchain.CC)
	assert.Equal(t, []string{"c++"}, project.Toolchain.CXX)
	assert.Equal(t, []string{"ar"}, project.Toolchain.AR)
	assert.Equal(t, []string{"rcs"}, project.Toolchain.ARFlags)
	assert.Equal(t, "lib", project.Toolchain.LibPrefix)
	assert.Equal(t, ".a", project.Toolchain.LibExtension)
	assert.Equal(t, filepath.Join(root, domain.DefaultBuildDirName), project.Build.Dir)
	assert.Empty(t, project.Build.CompileCommands)
	assert.Equal(t, domain.DefaultGracePeriod, project.Build.GracePeriod)
	assert.Equal(t, domain.VariantRelease, project.Options.Variant)
	assert.Equal(t, filepath.Join(root, domain.DefaultBuildDirName), project.Layout().BuildDir)
}

func TestLoader_Load_MSVCNaming(t *testing.T) {
	tests := []struct {
		name       string
		toolchain  string
		wantPrefix string
		wantExt    string
		wantAR     []string
	}{
		{
			name:      "detected from cl",
			toolchain: "toolchain: {cc: [cl.exe], cxx: [cl.exe]}",
			wantExt:   ".lib",
			wantAR:    []string{"lib"},
		},
		{
			name:      "explicit compiler id",
			toolchain: "toolchain: {compiler_id: msvc, cc: ['C:\\LLVM\\bin\\my-cc.exe'], ar: [llvm-lib]}",
			wantExt:   ".lib",
			wantAR:    []string{"llvm-lib"},
		},
		{
			name:       "explicit empty prefix survives for gcc",
			toolchain:  "toolchain: {cc: [gcc], lib_prefix: \"\"}",
			wantPrefix: "",
			wantExt:    ".a",
			wantAR:     []string{"ar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t, fstest.MapFS{
				"work/demo/smelt.yaml": file("project: demo\nscripts: [t.yaml]\n" + tt.toolchain + "\n"),
			})

			project, err := loader.Load(root)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrefix, project.Toolchain.LibPrefix)
			assert.Equal(t, tt.wantExt, project.Toolchain.LibExtension)
			assert.Equal(t, tt.wantAR, project.Toolchain.AR)
		})
	}
}

func TestLoader_Load_ScriptGlobs(t *testing.T) {
	loader, log := newLoader(t, fstest.MapFS{
		"work/demo/smelt.yaml":             file("project: demo\nscripts: [ports/*.hcl, targets.yaml, \"none/*.yaml\"]\n"),
		"work/demo/ports/zlib.hcl":         file(""),
		"work/demo/ports/libpng.hcl":       file(""),
		"work/demo/ports/nested.hcl/x.hcl": file(""),
		"work/demo/ports/README.md":        file(""),
	})
	log.EXPECT().Warn(`script pattern "none/*.yaml" matched no files`)

	project, err := loader.Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "ports", "libpng.hcl"),
		filepath.Join(root, "ports", "zlib.hcl"),
		filepath.Join(root, "targets.yaml"),
	}, project.Scripts)
}

func TestLoader_Load_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
		wantErr error
	}{
		{name: "missing project", content: "scripts: [a.yaml]", field: "project", wantErr: domain.ErrInvalidConfig},
		{name: "bad project name", content: "project: \"my lib\"\nscripts: [a.yaml]", field: "project", wantErr: domain.ErrInvalidConfig},
		{name: "no scripts", content: "project: demo", field: "scripts", wantErr: domain.ErrInvalidConfig},
		{name: "unknown version", content: "version: \"2\"\nproject: demo\nscripts: [a.yaml]", field: "version", wantErr: domain.ErrInvalidConfig},
		{name: "negative parallelism", content: "project: demo\nscripts: [a.yaml]\nbuild: {parallelism: -1}", field: "build.parallelism", wantErr: domain.ErrInvalidConfig},
		{name: "output archive path", content: "project: demo\nscripts: [a.yaml]\nbuild: {output_archive: lib/all}", field: "build.output_archive", wantErr: domain.ErrInvalidConfig},
		{name: "bad variant", content: "project: demo\nscripts: [a.yaml]\noptions: {variant: fast}", field: "options", wantErr: domain.ErrInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t, fstest.MapFS{"work/demo/smelt.yaml": file(tt.content + "\n")})

			_, err := loader.Load(root)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())

			var zErr *zerr.Error
			require.ErrorAs(t, err, &zErr)
			assert.Equal(t, tt.field, zErr.Metadata()["field"])
		})
	}
}

func TestLoader_Load_ParseError(t *testing.T) {
	loader, _ := newLoader(t, fstest.MapFS{"work/demo/smelt.yaml": file("project: [unterminated\n")})

	_, err := loader.Load(root)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigParseFailed.Error())
}

func TestLoader_DiscoverRoot(t *testing.T) {
	tmpDir := t.TempDir()
	projectDir := filepath.Join(tmpDir, "demo")
	deep := filepath.Join(projectDir, "src", "lib")
	require.NoError(t, os.MkdirAll(deep, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, domain.ProjectFileName), []byte("project: demo\n"), 0o600))

	loader := config.NewLoader(nil)

	got, err := loader.DiscoverRoot(deep)
	require.NoError(t, err)
	assert.Equal(t, projectDir, got)

	_, err = loader.DiscoverRoot(tmpDir)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
}
