package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/smelt/internal/adapters/compiledb"
	"go.trai.ch/smelt/internal/adapters/config"
	"go.trai.ch/smelt/internal/adapters/configure"
	"go.trai.ch/smelt/internal/adapters/descriptor"
	"go.trai.ch/smelt/internal/adapters/fs"
	"go.trai.ch/smelt/internal/adapters/store"
	"go.trai.ch/smelt/internal/adapters/telemetry"
	"go.trai.ch/smelt/internal/adapters/toolchain"
	"go.trai.ch/smelt/internal/adapters/watcher"
	"go.trai.ch/smelt/internal/app"
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports/mocks"
	"go.trai.ch/smelt/internal/engine/builder"
	"go.trai.ch/smelt/internal/engine/generator"
	"go.uber.org/mock/gomock"
)

// fakeExecutor stands in for cc and ar. Compiles write the object file and
// archives write the output, so the build leaves real artifacts behind.
type fakeExecutor struct {
	mu       sync.Mutex
	commands [][]string
	failing  string
}

func (e *fakeExecutor) Execute(_ context.Context, _ string, argv []string, _, stderr io.Writer) (int, error) {
	e.mu.Lock()
	e.commands = append(e.commands, argv)
	failing := e.failing
	e.mu.Unlock()

	switch argv[0] {
	case "cc":
		src, obj := argv[len(argv)-3], argv[len(argv)-1]
		if failing != "" && filepath.Base(src) == failing {
			_, _ = fmt.Fprintf(stderr, "%s:1:1: error: expected ';'\n", src)
			return 1, nil
		}
		return 0, os.WriteFile(obj, []byte("obj"), 0o600)
	case "ar":
		return 0, os.WriteFile(argv[2], []byte("!<arch>\n"), 0o600)
	default:
		return 127, nil
	}
}

// compiles returns the number of compile commands run for sources named base.
func (e *fakeExecutor) compiles(base string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, argv := range e.commands {
		if argv[0] == "cc" && filepath.Base(argv[len(argv)-3]) == base {
			n++
		}
	}
	return n
}

func (e *fakeExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.commands)
}

// logRecorder captures the messages sent to a mock logger.
type logRecorder struct {
	mu    sync.Mutex
	infos []string
	errs  []error
}

func (r *logRecorder) contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.infos, func(msg string) bool {
		return strings.Contains(msg, substr)
	})
}

type fixture struct {
	app      *app.App
	executor *fakeExecutor
	log      *logRecorder
	stdout   *bytes.Buffer
	root     string
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	rec := &logRecorder{}
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).Do(func(msg string) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.infos = append(rec.infos, msg)
	}).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.errs = append(rec.errs, err)
	}).AnyTimes()

	exec := &fakeExecutor{}
	tracer := telemetry.NewNoOpTracer()
	gen := generator.New(tracer, configure.NewRenderer(), configure.NewCopier())
	factory := builder.NewFactory(toolchain.NewFactory(exec), gen, tracer, compiledb.NewWriter())

	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	stdout := &bytes.Buffer{}
	a := app.New(
		config.NewLoader(log),
		descriptor.NewSet(descriptor.NewYAMLLoader(), descriptor.NewHCLLoader()),
		factory,
		store.NewStore(),
		fs.NewHasher(fs.NewWalker()),
		w,
		tracer,
		log,
	).WithOutput(stdout, io.Discard)

	return &fixture{app: a, executor: exec, log: rec, stdout: stdout, root: root}
}

const projectFile = `
version: "1"
project: demo
scripts: [targets.yaml]
search_paths: [third_party]
toolchain:
  cc: [cc]
  cxx: [c++]
  ar: [ar]
  compiler_id: gcc
build:
  compile_commands: compile_commands.json
`

func demoFiles() map[string]string {
	return map[string]string{
		"smelt.yaml": projectFile,
		"targets.yaml": `
targets:
  - name: app
    sources: [src/app.c, src/util.c]
    dependencies: [png]
`,
		"src/app.c":  "int app(void) { return 0; }\n",
		"src/util.c": "int util(void) { return 0; }\n",
		"third_party/png.yaml": `
targets:
  - name: png
    sources: [png/png.c]
    include_dirs: [png]
    dependencies: [zlib]
`,
		"third_party/png/png.c": "int png(void) { return 0; }\n",
		"third_party/zlib.yaml": `
targets:
  - name: zlib
    output: z
    sources: [zlib/adler32.c, zlib/crc32.c]
`,
		"third_party/zlib/adler32.c": "int adler32(void) { return 0; }\n",
		"third_party/zlib/crc32.c":   "int crc32(void) { return 0; }\n",
	}
}

func TestApp_Build(t *testing.T) {
	f := newFixture(t, demoFiles())

	err := f.app.Build(context.Background(), f.root, app.BuildOptions{OutputMode: "quiet"})
	require.NoError(t, err)

	for _, lib := range []string{"libapp.a", "libpng.a", "libz.a"} {
		assert.FileExists(t, filepath.Join(f.root, "build", "lib", lib))
	}
	assert.FileExists(t, filepath.Join(f.root, "build", "report.json"))
	assert.FileExists(t, filepath.Join(f.root, "compile_commands.json"))

	for _, src := range []string{"app.c", "util.c", "png.c", "adler32.c", "crc32.c"} {
		assert.Equal(t, 1, f.executor.compiles(src), src)
	}
	assert.Equal(t, 8, f.executor.count(), "five compiles and three archives")

	assert.True(t, f.log.contains("resolving png from third_party/png.yaml"))
	assert.True(t, f.log.contains("resolving zlib from third_party/zlib.yaml"))
	assert.True(t, f.log.contains("demo: 5 compiled, 0 failed, 0 skipped"))
}

func TestApp_Build_TUI(t *testing.T) {
	f := newFixture(t, demoFiles())
	f.app.WithTeaOptions(
		tea.WithInput(strings.NewReader("")),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)

	err := f.app.Build(context.Background(), f.root, app.BuildOptions{OutputMode: "tui"})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(f.root, "build", "lib", "libapp.a"))
	assert.Equal(t, 8, f.executor.count())
}

func TestApp_Build_Parallelism(t *testing.T) {
	f := newFixture(t, demoFiles())

	err := f.app.Build(context.Background(), f.root, app.BuildOptions{OutputMode: "quiet", Parallelism: 1})
	require.NoError(t, err)
	assert.Equal(t, 8, f.executor.count())
}

func TestApp_Build_CompileFailure(t *testing.T) {
	f := newFixture(t, demoFiles())
	f.executor.failing = "crc32.c"

	err := f.app.Build(context.Background(), f.root, app.BuildOptions{OutputMode: "quiet"})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrBuildFailed.Error())
	assert.ErrorContains(t, err, domain.ErrCompileFailed.Error())
	assert.ErrorContains(t, err, domain.ErrArchiveSkipped.Error())

	// Sibling targets still archive; the failing one does not.
	assert.FileExists(t, filepath.Join(f.root, "build", "lib", "libapp.a"))
	assert.FileExists(t, filepath.Join(f.root, "build", "lib", "libpng.a"))
	assert.NoFileExists(t, filepath.Join(f.root, "build", "lib", "libz.a"))

	report, err := store.NewStore().Get(filepath.Join(f.root, "build", "report.json"))
	require.NoError(t, err)
	assert.False(t, report.Succeeded)
	assert.NotEmpty(t, report.Errors)
	assert.True(t, f.log.contains("demo: 4 compiled, 1 failed, 0 skipped"))
}

func TestApp_Build_UnresolvedDependency(t *testing.T) {
	files := demoFiles()
	delete(files, "third_party/zlib.yaml")
	f := newFixture(t, files)

	err := f.app.Build(context.Background(), f.root, app.BuildOptions{OutputMode: "quiet"})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnresolvedDependency.Error())
	assert.Zero(t, f.executor.count(), "no process is spawned")
	assert.NoFileExists(t, filepath.Join(f.root, "build", "report.json"))
}

func TestApp_Build_MissingScript(t *testing.T) {
	files := demoFiles()
	delete(files, "targets.yaml")
	f := newFixture(t, files)

	err := f.app.Build(context.Background(), f.root, app.BuildOptions{OutputMode: "quiet"})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigReadFailed.Error())
}

func TestApp_Build_NoProject(t *testing.T) {
	f := newFixture(t, nil)

	err := f.app.Build(context.Background(), f.root, app.BuildOptions{})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
}

func TestApp_Targets(t *testing.T) {
	f := newFixture(t, demoFiles())

	require.NoError(t, f.app.Targets(context.Background(), filepath.Join(f.root, "src")))

	out := f.stdout.String()
	assert.Contains(t, out, "TARGET")
	assert.Contains(t, out, filepath.Join("build", "lib", "libz.a"))
	assert.Contains(t, out, filepath.Join("build", "lib", "libapp.a"))

	zlib := strings.Index(out, "zlib")
	png := strings.Index(out, "png")
	require.NotEqual(t, -1, zlib)
	require.NotEqual(t, -1, png)
	assert.Less(t, zlib, png, "targets are listed in build order")
	assert.Zero(t, f.executor.count(), "listing does not build")
}

func TestApp_Report(t *testing.T) {
	f := newFixture(t, demoFiles())

	err := f.app.Report(context.Background(), f.root, false)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrNoReport.Error())

	require.NoError(t, f.app.Build(context.Background(), f.root, app.BuildOptions{OutputMode: "quiet"}))

	t.Run("human", func(t *testing.T) {
		f.stdout.Reset()
		require.NoError(t, f.app.Report(context.Background(), f.root, false))
		out := f.stdout.String()
		assert.Contains(t, out, "demo succeeded")
		assert.Contains(t, out, "zlib")
		assert.Contains(t, out, filepath.Join("build", "lib", "libz.a"))
	})

	t.Run("json", func(t *testing.T) {
		f.stdout.Reset()
		require.NoError(t, f.app.Report(context.Background(), f.root, true))

		var report domain.Report
		require.NoError(t, json.Unmarshal(f.stdout.Bytes(), &report))
		assert.Equal(t, "demo", report.Project)
		assert.True(t, report.Succeeded)
		assert.Len(t, report.Targets, 3)
		assert.Len(t, report.Archives, 3)
	})
}

func TestApp_Clean(t *testing.T) {
	f := newFixture(t, demoFiles())
	require.NoError(t, f.app.Build(context.Background(), f.root, app.BuildOptions{OutputMode: "quiet"}))

	require.NoError(t, f.app.Clean(context.Background(), f.root))

	assert.NoDirExists(t, filepath.Join(f.root, "build"))
	assert.NoFileExists(t, filepath.Join(f.root, "compile_commands.json"))
	assert.FileExists(t, filepath.Join(f.root, "src", "app.c"))
	assert.True(t, f.log.contains("removed build directory"))

	// Cleaning twice is not an error.
	require.NoError(t, f.app.Clean(context.Background(), f.root))
}

func TestApp_Watch(t *testing.T) {
	f := newFixture(t, demoFiles())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- f.app.Watch(ctx, f.root, app.BuildOptions{OutputMode: "quiet"})
	}()

	require.Eventually(t, func() bool {
		return f.log.contains("watching")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, f.executor.compiles("crc32.c"))

	// Rewriting a file with identical content does not rebuild.
	crc := filepath.Join(f.root, "third_party", "zlib", "crc32.c")
	require.NoError(t, os.WriteFile(crc, []byte("int crc32(void) { return 0; }\n"), 0o600))
	time.Sleep(3 * watcher.DefaultDebounceWindow)
	assert.Equal(t, 1, f.executor.compiles("crc32.c"))

	require.NoError(t, os.WriteFile(crc, []byte("int crc32(void) { return 1; }\n"), 0o600))
	require.Eventually(t, func() bool {
		return f.executor.compiles("crc32.c") == 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, f.log.contains("rebuilding"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
