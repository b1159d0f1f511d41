// Package shell runs external processes such as compilers and archivers.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// waitDelay bounds how long Execute waits for output pipes after the process was killed.
const waitDelay = 2 * time.Second

// Executor implements ports.Executor using os/exec.
type Executor struct {
	env []string
}

// NewExecutor creates an Executor that passes the allow-listed part of the
// current environment to every process.
func NewExecutor() *Executor {
	return &Executor{env: filterSystemEnv(os.Environ())}
}

// Execute runs argv in dir and waits for it to exit.
func (e *Executor) Execute(ctx context.Context, dir string, argv []string, stdout, stderr io.Writer) (int, error) {
	if len(argv) == 0 {
		return -1, domain.ErrEmptyCommand
	}

	name := argv[0]
	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, e.env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // configured toolchain command
	cmd.Args[0] = name
	cmd.Dir = dir
	cmd.Env = e.env
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return -1, zerr.With(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()), "command", name)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return exitErr.ExitCode(), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return -1, zerr.With(zerr.Wrap(ctxErr, "process interrupted"), "command", name)
		}
		return -1, zerr.With(zerr.Wrap(err, "process failed"), "command", name)
	}
	return 0, nil
}

// allowListedEnvVars are the only system environment variables passed to processes.
// Besides the basics they cover the header and library search paths of
// gcc/clang and the MSVC developer prompt.
var allowListedEnvVars = map[string]struct{}{
	"HOME":          {},
	"PATH":          {},
	"TERM":          {},
	"TMPDIR":        {},
	"TEMP":          {},
	"TMP":           {},
	"USER":          {},
	"LANG":          {},
	"LC_ALL":        {},
	"SDKROOT":       {},
	"DEVELOPER_DIR": {},

	"CPATH":              {},
	"C_INCLUDE_PATH":     {},
	"CPLUS_INCLUDE_PATH": {},
	"LIBRARY_PATH":       {},

	"SYSTEMROOT":         {},
	"SYSTEMDRIVE":        {},
	"WINDIR":             {},
	"PATHEXT":            {},
	"INCLUDE":            {},
	"LIB":                {},
	"LIBPATH":            {},
	"VCINSTALLDIR":       {},
	"VCTOOLSINSTALLDIR":  {},
	"WINDOWSSDKDIR":      {},
	"UNIVERSALCRTSDKDIR": {},
	"UCRTVERSION":        {},
}

func filterSystemEnv(sysEnv []string) []string {
	var env []string
	for _, entry := range sysEnv {
		k, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if runtime.GOOS == "windows" {
			k = strings.ToUpper(k)
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			env = append(env, entry)
		}
	}
	return env
}

// lookPath searches for an executable in the directories named by PATH in env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
