// Package builder orchestrates a full build: graph resolution, feature tests,
// file generation, compilation and archiving.
package builder

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/smelt/internal/engine/archiver"
	"go.trai.ch/smelt/internal/engine/features"
	"go.trai.ch/smelt/internal/engine/generator"
	"go.trai.ch/smelt/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Config is the per-project configuration of a Builder.
type Config struct {
	Project string
	Layout  domain.Layout
	Build   domain.BuildConfig
	Options domain.Options
}

// Builder owns the target graph of one project and builds it.
type Builder struct {
	cfg       Config
	toolchain ports.Toolchain
	generator *generator.Generator
	tracer    ports.Tracer
	compileDB ports.CompileDatabase

	graph    *domain.Graph
	registry *features.Registry
}

// New creates a Builder with an empty graph.
func New(
	cfg Config,
	toolchain ports.Toolchain,
	gen *generator.Generator,
	tracer ports.Tracer,
	compileDB ports.CompileDatabase,
) *Builder {
	return &Builder{
		cfg:       cfg,
		toolchain: toolchain,
		generator: gen,
		tracer:    tracer,
		compileDB: compileDB,
		graph:     domain.NewGraph(),
	}
}

// Graph returns the target graph.
func (b *Builder) Graph() *domain.Graph {
	return b.graph
}

// Platform returns the parameters target scripts are evaluated against.
func (b *Builder) Platform() domain.Platform {
	info := b.toolchain.Info()
	return domain.Platform{
		OS:         info.OS,
		Arch:       info.Arch,
		CompilerID: info.CompilerID,
		Options:    b.cfg.Options,
	}
}

// Registry returns the feature test registry of the last build, or nil.
func (b *Builder) Registry() *features.Registry {
	return b.registry
}

// AddTargets normalizes the paths of targets and adds them to the graph.
// Relative paths are taken relative to each target's root; ${gen} expands to
// the target's generated-file directory.
func (b *Builder) AddTargets(targets ...*domain.Target) error {
	normalized := make([]*domain.Target, len(targets))
	for i, t := range targets {
		if err := t.Validate(); err != nil {
			return err
		}
		normalized[i] = b.normalize(t)
	}
	return b.graph.AddTargets(normalized...)
}

// Unresolved resolves the graph and returns the names of referenced targets
// that are not loaded.
func (b *Builder) Unresolved() ([]string, error) {
	if err := b.graph.Resolve(); err != nil {
		return nil, err
	}
	return b.graph.UnresolvedDependencies(), nil
}

// Plan resolves the graph and creates the compile and archive tasks without
// running anything. Tasks are in topological order.
func (b *Builder) Plan() ([]*domain.CompileTask, []*domain.ArchiveTask, error) {
	unresolved, err := b.Unresolved()
	if err != nil {
		return nil, nil, err
	}
	if len(unresolved) > 0 {
		return nil, nil, zerr.With(domain.ErrUnresolvedDependency, "dependencies", unresolved)
	}

	attrs, err := b.graph.Propagate()
	if err != nil {
		return nil, nil, err
	}

	info := b.toolchain.Info()
	order := b.graph.TopologicalOrder()
	byName := make(map[domain.InternedString]*domain.CompileTask, len(order))
	tasks := make([]*domain.CompileTask, 0, len(order))

	for _, name := range order {
		t, _ := b.graph.Target(name)
		task := b.newCompileTask(t, attrs[name], info)
		byName[name] = task
		tasks = append(tasks, task)
	}
	for _, task := range tasks {
		t, _ := b.graph.Target(task.Target)
		for _, dep := range t.Dependencies {
			task.Dependencies = append(task.Dependencies, byName[dep])
		}
	}

	return tasks, archiver.New(b.toolchain, b.tracer).Plan(tasks), nil
}

// BuildAll runs every stage of the build.
//
// Structural problems (unresolved or cyclic dependencies, malformed feature
// tests) fail before any process is spawned and return no report. All later
// failures are collected; the report is always returned and the error, if
// any, joins domain.ErrBuildFailed with every recorded failure.
func (b *Builder) BuildAll(ctx context.Context) (*domain.Report, error) {
	start := time.Now()

	tasks, archives, err := b.Plan()
	if err != nil {
		return nil, err
	}

	b.registry = features.NewRegistry(b.toolchain, b.tracer, b.cfg.Layout.FeatureTestDir(), b.cfg.Build.FeatureTestParallelism)
	for _, task := range tasks {
		t, _ := b.graph.Target(task.Target)
		for _, test := range t.FeatureTests {
			if _, err := b.registry.Register(test, t.Name); err != nil {
				return nil, err
			}
		}
	}

	var errs []error

	if err := b.registry.RunAll(ctx); err != nil {
		errs = collect(errs, err)
		skipGeneration(tasks, err)
	} else {
		for _, task := range tasks {
			errs = collect(errs, b.generator.Generate(ctx, task, b.registry.ResultsFor(task.Target)))
		}
	}

	sched := scheduler.NewScheduler(b.toolchain, archiver.New(b.toolchain, b.tracer), b.tracer, scheduler.Options{
		Parallelism: b.cfg.Build.Parallelism,
		GracePeriod: b.cfg.Build.GracePeriod,
	})
	errs = collect(errs, sched.Run(ctx, tasks, archives))

	if path := b.cfg.Build.CompileCommands; path != "" {
		errs = collect(errs, b.compileDB.Write(path, scheduler.CompileCommands(tasks)))
	}

	report := b.report(start, tasks, archives, errs)
	if len(errs) > 0 {
		return report, errors.Join(append([]error{domain.ErrBuildFailed}, errs...)...)
	}
	return report, nil
}

// collect appends err to errs, flattening joined errors.
func collect(errs []error, err error) []error {
	if err == nil {
		return errs
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			errs = collect(errs, e)
		}
		return errs
	}
	return append(errs, err)
}

func skipGeneration(tasks []*domain.CompileTask, cause error) {
	for _, task := range tasks {
		for _, file := range task.Generated {
			file.Result = domain.GenerationResult{Status: domain.StatusSkipped, Err: cause}
		}
	}
}

func (b *Builder) normalize(t *domain.Target) *domain.Target {
	n := *t
	if n.Root == "" {
		n.Root = "."
	}
	if abs, err := filepath.Abs(n.Root); err == nil {
		n.Root = abs
	}

	genDir := b.cfg.Layout.TargetGenDir(t.Name.String())
	resolve := func(base, path string) string {
		path = strings.ReplaceAll(path, domain.GenPathVar, genDir)
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		return filepath.Clean(path)
	}
	resolveAll := func(paths []string) []string {
		out := make([]string, len(paths))
		for i, p := range paths {
			out[i] = resolve(n.Root, p)
		}
		return out
	}

	n.Sources = resolveAll(t.Sources)
	n.IncludeDirs = resolveAll(t.IncludeDirs)
	n.PrivateIncludeDirs = resolveAll(t.PrivateIncludeDirs)
	n.PrivateDefinitions = append(slices.Clone(t.PrivateDefinitions), b.cfg.Options.Defines...)

	if b.cfg.Build.OutputArchive != "" {
		n.Output = b.cfg.Build.OutputArchive
	}

	n.GeneratedFiles = make([]domain.GeneratedFileSpec, len(t.GeneratedFiles))
	for i, g := range t.GeneratedFiles {
		g.Template = resolve(n.Root, g.Template)
		g.Output = resolve(genDir, g.Output)
		n.GeneratedFiles[i] = g
	}
	return &n
}

func (b *Builder) newCompileTask(t *domain.Target, attrs domain.Attributes, info domain.ToolchainInfo) *domain.CompileTask {
	task := domain.NewCompileTask(t.Name)
	task.Root = t.Root
	task.ObjDir = b.cfg.Layout.TargetObjDir(t.Name.String())
	task.LibPath = filepath.Join(b.cfg.Layout.LibDir(), info.LibraryName(t.OutputName()))
	task.IncludeDirs = attrs.IncludeDirs
	task.Definitions = attrs.Definitions

	objExt := ".o"
	if info.CompilerID == domain.CompilerMSVC {
		objExt = ".obj"
	}
	for _, src := range t.Sources {
		task.Sources = append(task.Sources, domain.SourceFile{
			Path:     src,
			Object:   filepath.Join(task.ObjDir, mirrorPath(t.Root, src)) + objExt,
			Language: domain.LanguageForPath(src),
		})
	}

	for _, g := range t.GeneratedFiles {
		task.Generated = append(task.Generated, &domain.GeneratedFile{
			Target:      t.Name,
			Template:    g.Template,
			Output:      g.Output,
			Kind:        g.Kind,
			Definitions: g.Definitions,
			Result:      domain.GenerationResult{Status: domain.StatusPending},
		})
	}
	return task
}

// mirrorPath returns src relative to root for use below the object directory.
// Parent references are replaced so objects never escape it.
func mirrorPath(root, src string) string {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		rel = strings.TrimPrefix(filepath.ToSlash(src), filepath.VolumeName(src))
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	kept := parts[:0]
	for _, p := range parts {
		switch p {
		case "", ".":
			continue
		case "..":
			kept = append(kept, "__")
		default:
			kept = append(kept, p)
		}
	}
	return filepath.Join(kept...)
}

func (b *Builder) report(start time.Time, tasks []*domain.CompileTask, archives []*domain.ArchiveTask, errs []error) *domain.Report {
	r := &domain.Report{
		Project:   b.cfg.Project,
		StartedAt: start,
		Duration:  time.Since(start),
		Succeeded: len(errs) == 0,
		Toolchain: b.toolchain.Info(),
	}

	for _, task := range tasks {
		t, _ := b.graph.Target(task.Target)
		tr := domain.TargetReport{
			Name:               t.Name.String(),
			SystemDependencies: t.SystemDependencies,
		}
		for _, dep := range t.Dependencies {
			tr.Dependencies = append(tr.Dependencies, dep.String())
		}
		for _, g := range task.Generated {
			tr.Generated = append(tr.Generated, domain.NewFileReport(g))
		}
		for _, src := range task.Sources {
			res, ok := task.Result(src.Path)
			if !ok {
				res = domain.CompileResult{Source: src.Path, Object: src.Object, Status: domain.StatusPending}
			}
			tr.Sources = append(tr.Sources, domain.NewSourceReport(res))
		}
		r.Targets = append(r.Targets, tr)
	}

	if b.registry != nil {
		for _, ft := range b.registry.Tasks() {
			r.FeatureTests = append(r.FeatureTests, domain.NewFeatureReport(ft))
		}
	}
	for _, a := range archives {
		r.Archives = append(r.Archives, domain.NewArchiveReport(a))
	}
	for _, err := range errs {
		r.Errors = append(r.Errors, err.Error())
	}
	return r
}
