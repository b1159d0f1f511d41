// Package features deduplicates and executes compiler feature tests.
package features

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Registry collects feature test requests from all targets of one build and
// runs every distinct probe exactly once.
type Registry struct {
	toolchain   ports.Toolchain
	tracer      ports.Tracer
	dir         string
	parallelism int

	mu       sync.Mutex
	tasks    map[string]*domain.FeatureTestTask
	order    []*domain.FeatureTestTask
	byTarget map[domain.InternedString][]*domain.FeatureTestTask
}

// NewRegistry creates an empty Registry writing probes below dir.
// A parallelism below one means host parallelism.
func NewRegistry(toolchain ports.Toolchain, tracer ports.Tracer, dir string, parallelism int) *Registry {
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}
	return &Registry{
		toolchain:   toolchain,
		tracer:      tracer,
		dir:         dir,
		parallelism: parallelism,
		tasks:       make(map[string]*domain.FeatureTestTask),
		byTarget:    make(map[domain.InternedString][]*domain.FeatureTestTask),
	}
}

// Fingerprint returns the structural identity of test.
// The variable name is not part of it, so differently named requests for the
// same probe share one execution. Header order is significant.
func Fingerprint(test *domain.FeatureTest) string {
	h := xxhash.New()
	write := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}

	write(string(test.Type))
	write(string(test.EffectiveLanguage()))
	for _, header := range test.Headers {
		write(header)
	}
	_, _ = h.Write([]byte{0})
	write(test.Flag)
	write(test.TypeName)
	write(test.Function)
	write(test.StructName)
	write(test.Member)

	return fmt.Sprintf("%016x", h.Sum64())
}

// Register validates test and attaches requester to the matching task,
// creating it on first sight. It is safe for concurrent use.
func (r *Registry) Register(test domain.FeatureTest, requester domain.InternedString) (*domain.FeatureTestTask, error) {
	if err := test.Validate(); err != nil {
		return nil, zerr.With(err, "target", requester.String())
	}

	fp := Fingerprint(&test)

	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[fp]
	if !ok {
		task = domain.NewFeatureTestTask(fp, test)
		task.ProbePath = filepath.Join(r.dir, fp+ProbeExtension(&test))
		r.tasks[fp] = task
		r.order = append(r.order, task)
	}
	if !task.HasRequester(requester) {
		r.byTarget[requester] = append(r.byTarget[requester], task)
	}
	task.AddRequester(requester, test.Variable)

	return task, nil
}

// Tasks returns the distinct tasks in registration order.
func (r *Registry) Tasks() []*domain.FeatureTestTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.FeatureTestTask(nil), r.order...)
}

// Len returns the number of distinct tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// RunAll executes every task that has not run yet.
// A probe that fails to compile is a negative result, not an error; only
// cancellation and probe-file I/O failures are returned.
func (r *Registry) RunAll(ctx context.Context) error {
	tasks := r.Tasks()
	pending := make([]*domain.FeatureTestTask, 0, len(tasks))
	for _, task := range tasks {
		if _, done := task.Result(); !done {
			pending = append(pending, task)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	if err := os.MkdirAll(r.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create feature test directory"), "dir", r.dir)
	}

	names := make([]string, len(pending))
	for i, task := range pending {
		names[i] = probeSpanName(task)
	}
	r.tracer.EmitPlan(ctx, "feature-tests", names)

	ctx, span := r.tracer.Start(ctx, "feature-tests", ports.WithQuiet())
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for _, task := range pending {
		g.Go(func() error {
			return r.run(ctx, task)
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (r *Registry) run(ctx context.Context, task *domain.FeatureTestTask) error {
	ctx, span := r.tracer.Start(ctx, probeSpanName(task))
	defer span.End()

	if err := os.WriteFile(task.ProbePath, []byte(ProbeSource(&task.Test)), domain.FilePerm); err != nil {
		err = zerr.With(zerr.Wrap(err, "failed to write probe"), "probe", task.ProbePath)
		span.RecordError(err)
		return err
	}

	req := domain.CompileRequest{
		Dir:      r.dir,
		Source:   task.ProbePath,
		Object:   task.ProbePath + ".o",
		Language: task.Test.EffectiveLanguage(),
	}
	if task.Test.Type == domain.FeatureCompilerFlag {
		req.ExtraFlags = []string{task.Test.Flag}
	}

	start := time.Now()
	res := r.toolchain.Compile(ctx, req)
	if res.Err != nil && ctx.Err() != nil {
		span.RecordError(res.Err)
		return zerr.With(res.Err, "probe", task.Test.Variable)
	}

	log := res.Log()
	if res.Err != nil {
		log = res.Err.Error()
	}
	task.SetResult(domain.FeatureTestResult{
		Available: res.Err == nil && res.ExitCode == 0,
		Command:   res.Command,
		Log:       log,
		Duration:  time.Since(start),
	})
	available, _ := task.Result()
	span.SetAttribute("smelt.available", available.Available)
	return nil
}

// ResultsFor returns the variable to availability mapping for target.
// Probes that have not run are omitted.
func (r *Registry) ResultsFor(target domain.InternedString) map[string]bool {
	r.mu.Lock()
	tasks := append([]*domain.FeatureTestTask(nil), r.byTarget[target]...)
	r.mu.Unlock()

	results := make(map[string]bool)
	for _, task := range tasks {
		res, ok := task.Result()
		if !ok {
			continue
		}
		for _, variable := range task.Variables(target) {
			results[variable] = res.Available
		}
	}
	return results
}

func probeSpanName(task *domain.FeatureTestTask) string {
	return "probe " + task.Test.Variable
}
