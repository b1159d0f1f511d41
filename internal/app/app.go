// Package app implements the application layer for smelt.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/smelt/internal/adapters/detector" //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/adapters/linear"   //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/adapters/tui"      //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/smelt/internal/engine/builder"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	targets      ports.TargetLoader
	builders     *builder.Factory
	store        ports.ReportStore
	hasher       ports.Hasher
	watcher      ports.Watcher
	tracer       ports.Tracer
	logger       ports.Logger

	stdout     io.Writer
	stderr     io.Writer
	teaOptions []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	targets ports.TargetLoader,
	builders *builder.Factory,
	store ports.ReportStore,
	hasher ports.Hasher,
	watcher ports.Watcher,
	tracer ports.Tracer,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		targets:      targets,
		builders:     builders,
		store:        store,
		hasher:       hasher,
		watcher:      watcher,
		tracer:       tracer,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects build progress and command output.
// This is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithTeaOptions adds options to the program of the tui output mode.
// This is primarily used for testing.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// BuildOptions configuration for the Build and Watch methods.
type BuildOptions struct {
	// OutputMode is one of "auto", "tui", "linear", "ci" or "quiet".
	OutputMode string
	// Parallelism overrides build.parallelism when positive.
	Parallelism int
}

// session is a loaded project whose targets are all in the builder's graph.
type session struct {
	project *domain.Project
	builder *builder.Builder
}

// Build loads the project at or above cwd and builds every target.
func (a *App) Build(ctx context.Context, cwd string, opts BuildOptions) error {
	s, err := a.load(ctx, cwd, opts.Parallelism)
	if err != nil {
		return err
	}
	return a.run(ctx, s, opts.OutputMode)
}

func (a *App) load(ctx context.Context, cwd string, parallelism int) (*session, error) {
	project, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if parallelism > 0 {
		project.Build.Parallelism = parallelism
	}

	b, err := a.builders.New(project)
	if err != nil {
		return nil, err
	}
	if err := a.loadTargets(ctx, project, b); err != nil {
		return nil, err
	}
	return &session{project: project, builder: b}, nil
}

// loadTargets evaluates the configured scripts, then looks up scripts named
// after unresolved targets in the search paths until no new script is found.
func (a *App) loadTargets(ctx context.Context, project *domain.Project, b *builder.Builder) error {
	platform := b.Platform()
	loaded := make(map[string]bool)

	load := func(script string) error {
		loaded[script] = true
		targets, err := a.targets.Load(ctx, script, platform)
		if err != nil {
			return err
		}
		return b.AddTargets(targets...)
	}

	for _, script := range project.Scripts {
		if loaded[script] {
			continue
		}
		if err := load(script); err != nil {
			return err
		}
	}

	for {
		unresolved, err := b.Unresolved()
		if err != nil {
			return err
		}

		progress := false
		for _, name := range unresolved {
			script, ok := a.findScript(project.SearchPaths, name)
			if !ok || loaded[script] {
				continue
			}
			a.logger.Info(fmt.Sprintf("resolving %s from %s", name, relTo(project.Root, script)))
			if err := load(script); err != nil {
				return err
			}
			progress = true
		}
		if !progress {
			return nil
		}
	}
}

func (a *App) findScript(searchPaths []string, name string) (string, bool) {
	for _, dir := range searchPaths {
		for _, ext := range a.targets.Extensions() {
			candidate := filepath.Join(dir, name+ext)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate, true
			}
		}
	}
	return "", false
}

// run builds s while a renderer for outputMode presents progress, persists
// the report and logs a summary.
func (a *App) run(ctx context.Context, s *session, outputMode string) error {
	var report *domain.Report

	renderer := a.newRenderer(ctx, outputMode)
	shutdown := a.attachRenderer(renderer)
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()

	g, ctx := errgroup.WithContext(ctx)

	// Renderer Routine
	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	// Build Routine
	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()

		var err error
		report, err = a.buildAll(ctx, s)
		return err
	})

	err := g.Wait()
	if report != nil {
		succeeded, failed, skipped := report.Counts()
		a.logger.Info(fmt.Sprintf("%s: %d compiled, %d failed, %d skipped in %s",
			report.Project, succeeded, failed, skipped, report.Duration.Round(time.Millisecond)))
	}
	return err
}

func (a *App) buildAll(ctx context.Context, s *session) (*domain.Report, error) {
	ctx, span := a.tracer.Start(ctx, "build "+s.project.Name, ports.WithQuiet())
	defer span.End()

	report, err := s.builder.BuildAll(ctx)
	if err != nil {
		span.RecordError(err)
	}
	if report != nil {
		if putErr := a.store.Put(s.project.Layout().ReportPath(), report); putErr != nil {
			a.logger.Error(putErr)
		}
	}
	return report, err
}

func (a *App) newRenderer(ctx context.Context, outputMode string) ports.Renderer {
	switch detector.ResolveMode(detector.DetectEnvironment(), outputMode) {
	case detector.ModeTUI:
		opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, a.teaOptions...)
		return tui.NewRenderer(a.stderr, opts...)
	case detector.ModeQuiet:
		return linear.NewRenderer(a.stdout, a.stderr, linear.WithQuiet())
	default:
		return linear.NewRenderer(a.stdout, a.stderr)
	}
}

// installer is implemented by tracers that forward spans to a renderer.
type installer interface {
	Install(r ports.Renderer) func(context.Context) error
}

func (a *App) attachRenderer(r ports.Renderer) func(context.Context) error {
	if t, ok := a.tracer.(installer); ok {
		return t.Install(r)
	}
	return func(context.Context) error { return nil }
}

// Clean removes the build directory and the compile command database.
func (a *App) Clean(_ context.Context, cwd string) error {
	project, err := a.configLoader.Load(cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error

	remove := func(path string, name string) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return
		}
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	buildDir := project.Layout().BuildDir
	remove(buildDir, "build directory")

	if db := project.Build.CompileCommands; db != "" && !within(buildDir, db) {
		remove(db, "compile command database")
	}

	return errs
}

// within reports whether path is dir or below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// relTo returns path relative to root when it lies below root.
func relTo(root, path string) string {
	if within(root, path) {
		if rel, err := filepath.Rel(root, path); err == nil {
			return rel
		}
	}
	return path
}

// roots returns the project root and every target root outside of it.
func (s *session) roots() []string {
	roots := []string{s.project.Root}
	for t := range s.builder.Graph().Targets() {
		if !within(s.project.Root, t.Root) && !slices.Contains(roots, t.Root) {
			roots = append(roots, t.Root)
		}
	}
	slices.Sort(roots[1:])
	return roots
}
