package toolchain_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/smelt/internal/adapters/toolchain"
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func gnuConfig() domain.ToolchainConfig {
	return domain.ToolchainConfig{
		OS:           "linux",
		Arch:         "amd64",
		CC:           []string{"gcc"},
		CXX:          []string{"g++"},
		CFlags:       []string{"-O2"},
		CXXFlags:     []string{"-O2", "-std=c++17"},
		AR:           []string{"ar"},
		ARFlags:      []string{"rcs"},
		LibPrefix:    "lib",
		LibExtension: ".a",
	}
}

func TestNew_Validation(t *testing.T) {
	cfg := gnuConfig()
	cfg.AR = nil

	_, err := toolchain.New(cfg, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidConfig.Error())
}

func TestNew_DetectsCompilerID(t *testing.T) {
	tc, err := toolchain.New(gnuConfig(), nil)
	require.NoError(t, err)

	info := tc.Info()
	assert.Equal(t, domain.CompilerGCC, info.CompilerID)
	assert.Equal(t, "linux", info.OS)
	assert.Equal(t, "libz.a", info.LibraryName("z"))
}

func TestCompileCommand_GNU(t *testing.T) {
	tc, err := toolchain.New(gnuConfig(), nil)
	require.NoError(t, err)

	req := domain.CompileRequest{
		Source:      "/src/zlib/adler32.c",
		Object:      "/build/obj/zlib/adler32.o",
		Language:    domain.LanguageC,
		IncludeDirs: []string{"/src/zlib", "/build/gen/zlib"},
		Definitions: []string{"Z_HAVE_UNISTD_H", "LEVEL=2"},
	}
	assert.Equal(t, []string{
		"gcc", "-O2",
		"-I/src/zlib", "-I/build/gen/zlib",
		"-DZ_HAVE_UNISTD_H", "-DLEVEL=2",
		"-c", "/src/zlib/adler32.c", "-o", "/build/obj/zlib/adler32.o",
	}, tc.CompileCommand(req))

	req.Language = domain.LanguageCXX
	req.ExtraFlags = []string{"-Wall"}
	cmd := tc.CompileCommand(req)
	assert.Equal(t, []string{"g++", "-O2", "-std=c++17", "-Wall"}, cmd[:4])
}

func TestCompileCommand_MSVC(t *testing.T) {
	cfg := gnuConfig()
	cfg.CC, cfg.CXX, cfg.AR = []string{"cl"}, []string{"cl"}, []string{"lib"}
	cfg.CFlags, cfg.ARFlags = nil, []string{"/NOLOGO"}
	tc, err := toolchain.New(cfg, nil)
	require.NoError(t, err)

	cmd := tc.CompileCommand(domain.CompileRequest{
		Source:      `C:\src\a.c`,
		Object:      `C:\obj\a.obj`,
		IncludeDirs: []string{`C:\inc`},
		Definitions: []string{"WIN32"},
	})
	assert.Equal(t, []string{"cl", `/IC:\inc`, "/DWIN32", "/nologo", "/c", `C:\src\a.c`, `/FoC:\obj\a.obj`}, cmd)

	assert.Equal(t, []string{"lib", "/NOLOGO", `/OUT:C:\lib\z.lib`, "a.obj"}, tc.ArchiveCommand([]string{"a.obj"}, `C:\lib\z.lib`))
}

func TestArchiveCommand_GNU(t *testing.T) {
	tc, err := toolchain.New(gnuConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"ar", "rcs", "/lib/libz.a", "a.o", "b.o"},
		tc.ArchiveCommand([]string{"a.o", "b.o"}, "/lib/libz.a"))
}

func TestCompile_CapturesOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	tc, err := toolchain.New(gnuConfig(), executor)
	require.NoError(t, err)

	objDir := t.TempDir()
	req := domain.CompileRequest{
		Dir:    "/src",
		Source: "/src/a.c",
		Object: filepath.Join(objDir, "nested", "a.o"),
	}

	executor.EXPECT().
		Execute(gomock.Any(), "/src", tc.CompileCommand(req), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ []string, stdout, stderr io.Writer) (int, error) {
			_, _ = io.WriteString(stdout, "note\n")
			_, _ = io.WriteString(stderr, "a.c:1: error: expected ';'\n")
			return 1, nil
		})

	res := tc.Compile(context.Background(), req)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "note\n", res.Stdout)
	assert.Contains(t, res.Stderr, "expected ';'")
	assert.DirExists(t, filepath.Join(objDir, "nested"))
}

func TestArchive_RunsInLibraryDir(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	tc, err := toolchain.New(gnuConfig(), executor)
	require.NoError(t, err)

	libDir := filepath.Join(t.TempDir(), "lib")
	out := filepath.Join(libDir, "libz.a")

	executor.EXPECT().
		Execute(gomock.Any(), libDir, []string{"ar", "rcs", out, "a.o"}, gomock.Any(), gomock.Any()).
		Return(0, nil)

	res := tc.Archive(context.Background(), []string{"a.o"}, out)
	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.ExitCode)
	assert.DirExists(t, libDir)
}

func TestFactory(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := toolchain.NewFactory(mocks.NewMockExecutor(ctrl))

	tc, err := factory.New(gnuConfig())
	require.NoError(t, err)
	assert.Equal(t, domain.CompilerGCC, tc.Info().CompilerID)
}
