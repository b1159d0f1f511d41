// Package toolchain builds and runs compiler and archiver command lines.
package toolchain

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Toolchain        = (*Toolchain)(nil)
	_ ports.ToolchainFactory = (*Factory)(nil)
)

// Toolchain implements ports.Toolchain for GCC-compatible and MSVC-compatible compilers.
type Toolchain struct {
	cfg      domain.ToolchainConfig
	info     domain.ToolchainInfo
	executor ports.Executor
}

// New validates cfg and creates a Toolchain that runs commands through executor.
func New(cfg domain.ToolchainConfig, executor ports.Executor) (*Toolchain, error) {
	switch {
	case len(cfg.CC) == 0:
		return nil, zerr.With(domain.ErrInvalidConfig, "field", "toolchain.cc")
	case len(cfg.CXX) == 0:
		return nil, zerr.With(domain.ErrInvalidConfig, "field", "toolchain.cxx")
	case len(cfg.AR) == 0:
		return nil, zerr.With(domain.ErrInvalidConfig, "field", "toolchain.ar")
	}

	if cfg.CompilerID == "" {
		cfg.CompilerID = DetectCompilerID(cfg.CC[0], cfg.CXX[0])
	}

	return &Toolchain{
		cfg: cfg,
		info: domain.ToolchainInfo{
			OS:           cfg.OS,
			Arch:         cfg.Arch,
			CompilerID:   cfg.CompilerID,
			LibPrefix:    cfg.LibPrefix,
			LibExtension: cfg.LibExtension,
		},
		executor: executor,
	}, nil
}

// Info returns the static properties of the toolchain.
func (t *Toolchain) Info() domain.ToolchainInfo {
	return t.info
}

func (t *Toolchain) msvc() bool {
	return t.cfg.CompilerID == domain.CompilerMSVC
}

// CompileCommand returns the compiler command line for req.
func (t *Toolchain) CompileCommand(req domain.CompileRequest) []string {
	compiler, flags := t.cfg.CC, t.cfg.CFlags
	if req.Language == domain.LanguageCXX {
		compiler, flags = t.cfg.CXX, t.cfg.CXXFlags
	}

	includeFlag, defineFlag := "-I", "-D"
	if t.msvc() {
		includeFlag, defineFlag = "/I", "/D"
	}

	cmd := slices.Clone(compiler)
	cmd = append(cmd, flags...)
	cmd = append(cmd, req.ExtraFlags...)
	for _, dir := range req.IncludeDirs {
		cmd = append(cmd, includeFlag+dir)
	}
	for _, def := range req.Definitions {
		cmd = append(cmd, defineFlag+def)
	}

	if t.msvc() {
		return append(cmd, "/nologo", "/c", req.Source, "/Fo"+req.Object)
	}
	return append(cmd, "-c", req.Source, "-o", req.Object)
}

// Compile compiles one source file.
func (t *Toolchain) Compile(ctx context.Context, req domain.CompileRequest) domain.CommandResult {
	cmd := t.CompileCommand(req)
	if err := os.MkdirAll(filepath.Dir(req.Object), domain.DirPerm); err != nil {
		return domain.CommandResult{Command: cmd, ExitCode: -1, Err: zerr.With(zerr.Wrap(err, "failed to create object directory"), "object", req.Object)}
	}
	return t.run(ctx, req.Dir, cmd)
}

// ArchiveCommand returns the archiver command line.
func (t *Toolchain) ArchiveCommand(objects []string, output string) []string {
	cmd := slices.Clone(t.cfg.AR)
	cmd = append(cmd, t.cfg.ARFlags...)
	if t.msvc() {
		cmd = append(cmd, "/OUT:"+output)
	} else {
		cmd = append(cmd, output)
	}
	return append(cmd, objects...)
}

// Archive links objects into output.
func (t *Toolchain) Archive(ctx context.Context, objects []string, output string) domain.CommandResult {
	cmd := t.ArchiveCommand(objects, output)
	if err := os.MkdirAll(filepath.Dir(output), domain.DirPerm); err != nil {
		return domain.CommandResult{Command: cmd, ExitCode: -1, Err: zerr.With(zerr.Wrap(err, "failed to create library directory"), "output", output)}
	}
	return t.run(ctx, filepath.Dir(output), cmd)
}

func (t *Toolchain) run(ctx context.Context, dir string, cmd []string) domain.CommandResult {
	var stdout, stderr bytes.Buffer
	start := time.Now()
	code, err := t.executor.Execute(ctx, dir, cmd, &stdout, &stderr)
	return domain.CommandResult{
		Command:  cmd,
		ExitCode: code,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		Err:      err,
	}
}

// Factory creates toolchains sharing one executor.
type Factory struct {
	executor ports.Executor
}

// NewFactory returns a Factory running commands through executor.
func NewFactory(executor ports.Executor) *Factory {
	return &Factory{executor: executor}
}

// New creates a Toolchain from cfg.
func (f *Factory) New(cfg domain.ToolchainConfig) (ports.Toolchain, error) {
	return New(cfg, f.executor)
}
