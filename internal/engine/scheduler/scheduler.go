// Package scheduler compiles sources and archives libraries on a bounded worker pool.
package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/smelt/internal/engine/archiver"
	"go.trai.ch/zerr"
)

// Options configures a Scheduler.
type Options struct {
	// Parallelism bounds concurrent jobs. Zero means runtime.NumCPU().
	Parallelism int
	// GracePeriod bounds how long in-flight jobs run after cancellation.
	GracePeriod time.Duration
}

// Scheduler runs compile jobs and the archive jobs they unlock.
type Scheduler struct {
	toolchain ports.Toolchain
	stage     *archiver.Stage
	tracer    ports.Tracer
	opts      Options
}

// NewScheduler creates a Scheduler compiling through toolchain and archiving through stage.
func NewScheduler(toolchain ports.Toolchain, stage *archiver.Stage, tracer ports.Tracer, opts Options) *Scheduler {
	if opts.Parallelism < 1 {
		opts.Parallelism = runtime.NumCPU()
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = domain.DefaultGracePeriod
	}
	return &Scheduler{
		toolchain: toolchain,
		stage:     stage,
		tracer:    tracer,
		opts:      opts,
	}
}

type jobKind int

const (
	compileJob jobKind = iota
	archiveJob
)

type job struct {
	kind    jobKind
	task    *domain.CompileTask
	source  domain.SourceFile
	archive *domain.ArchiveTask
}

type result struct {
	job job
	err error
}

type runState struct {
	s *Scheduler

	ctx     context.Context
	jobCtx  context.Context
	ready   []job
	active  int
	results chan result
	errs    []error

	// remaining counts the unfinished sources of each task.
	remaining map[*domain.CompileTask]int
	// waiting counts the undrained contributors of each archive.
	waiting map[*domain.ArchiveTask]int
	// archivesOf maps a task to the archives it contributes to.
	archivesOf map[*domain.CompileTask][]*domain.ArchiveTask
}

// Run compiles every source of tasks and archives each entry of archives
// once all of its contributing tasks have drained.
//
// Failures do not stop the run: every source is attempted and all errors are
// returned joined. Tasks whose generated files failed have their sources
// recorded as skipped. After ctx is cancelled no new job starts; running
// jobs get the grace period to finish before their context is cancelled.
func (s *Scheduler) Run(ctx context.Context, tasks []*domain.CompileTask, archives []*domain.ArchiveTask) error {
	jobCtx, cancelJobs := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelJobs()

	state := &runState{
		s:          s,
		ctx:        ctx,
		jobCtx:     jobCtx,
		results:    make(chan result, s.opts.Parallelism),
		remaining:  make(map[*domain.CompileTask]int, len(tasks)),
		waiting:    make(map[*domain.ArchiveTask]int, len(archives)),
		archivesOf: make(map[*domain.CompileTask][]*domain.ArchiveTask),
	}

	for _, a := range archives {
		state.waiting[a] = len(a.Sources)
		for _, task := range a.Sources {
			state.archivesOf[task] = append(state.archivesOf[task], a)
		}
	}

	var planned []string
	for _, task := range tasks {
		if !task.GenerationSucceeded() {
			state.skipTask(task, zerr.With(domain.ErrCompileSkipped, "reason", "generated files failed"))
			continue
		}
		state.remaining[task] = len(task.Sources)
		for _, src := range task.Sources {
			state.ready = append(state.ready, job{kind: compileJob, task: task, source: src})
			planned = append(planned, compileSpanName(task, src))
		}
	}
	s.tracer.EmitPlan(ctx, "compile", planned)

	for _, task := range tasks {
		if _, ok := state.remaining[task]; !ok {
			state.drained(task)
		}
	}

	grace := state.runExecutionLoop(cancelJobs)
	if grace != nil {
		grace.Stop()
	}

	return errors.Join(state.errs...)
}

func (state *runState) runExecutionLoop(cancelJobs context.CancelFunc) *time.Timer {
	var grace *time.Timer
	cancelled := false

	for {
		if !cancelled {
			state.schedule()
		}
		if state.active == 0 && (len(state.ready) == 0 || cancelled) {
			break
		}

		var done <-chan struct{}
		if !cancelled {
			done = state.ctx.Done()
		}

		select {
		case res := <-state.results:
			state.handleResult(res)
		case <-done:
			cancelled = true
			grace = time.AfterFunc(state.s.opts.GracePeriod, cancelJobs)
		}
	}

	if err := state.ctx.Err(); err != nil {
		state.cancelPending(err)
	}
	return grace
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.s.opts.Parallelism && state.ctx.Err() == nil {
		j := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		if j.kind == compileJob {
			j.task.Record(domain.CompileResult{
				Source: j.source.Path,
				Object: j.source.Object,
				Status: domain.StatusRunning,
			})
		}
		go state.execute(j)
	}
}

func (state *runState) execute(j job) {
	var err error
	switch j.kind {
	case compileJob:
		err = state.compile(j.task, j.source)
	case archiveJob:
		err = state.s.stage.Archive(state.jobCtx, j.archive)
	}
	state.results <- result{job: j, err: err}
}

func (state *runState) compile(task *domain.CompileTask, src domain.SourceFile) error {
	ctx, span := state.s.tracer.Start(state.jobCtx, compileSpanName(task, src))
	defer span.End()

	req := domain.CompileRequest{
		Dir:         task.Root,
		Source:      src.Path,
		Object:      src.Object,
		Language:    src.Language,
		IncludeDirs: task.IncludeDirs,
		Definitions: task.Definitions,
	}
	res := state.s.toolchain.Compile(ctx, req)

	if log := res.Log(); log != "" {
		_, _ = span.Write([]byte(log))
	}

	rec := domain.CompileResult{
		Source:   src.Path,
		Object:   src.Object,
		Status:   domain.StatusSucceeded,
		Command:  res.Command,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		Duration: res.Duration,
	}

	var err error
	switch {
	case res.Err != nil:
		err = zerr.Wrap(res.Err, domain.ErrCompileFailed.Error())
	case res.ExitCode != 0:
		err = zerr.With(domain.ErrCompileFailed, "exit_code", res.ExitCode)
	}
	if err != nil {
		err = zerr.With(err, "target", task.Target.String())
		err = zerr.With(err, "source", src.Path)
		rec.Status = domain.StatusFailed
		rec.Err = err
		span.RecordError(err)
	}

	task.Record(rec)
	return err
}

func (state *runState) handleResult(res result) {
	state.active--

	if res.err != nil {
		state.errs = append(state.errs, res.err)
	}

	if res.job.kind == compileJob {
		state.remaining[res.job.task]--
		if state.remaining[res.job.task] == 0 {
			state.drained(res.job.task)
		}
	}
}

// drained queues every archive whose contributors have all finished.
func (state *runState) drained(task *domain.CompileTask) {
	for _, a := range state.archivesOf[task] {
		state.waiting[a]--
		if state.waiting[a] == 0 {
			state.ready = append(state.ready, job{kind: archiveJob, archive: a})
		}
	}
}

func (state *runState) skipTask(task *domain.CompileTask, reason error) {
	for _, src := range task.Sources {
		err := zerr.With(reason, "target", task.Target.String())
		task.Record(domain.CompileResult{
			Source: src.Path,
			Object: src.Object,
			Status: domain.StatusSkipped,
			Err:    zerr.With(err, "source", src.Path),
		})
	}
}

// cancelPending records every job that never started as skipped.
func (state *runState) cancelPending(cause error) {
	for _, j := range state.ready {
		if j.kind != compileJob {
			continue
		}
		err := zerr.With(zerr.Wrap(cause, domain.ErrCompileSkipped.Error()), "target", j.task.Target.String())
		j.task.Record(domain.CompileResult{
			Source: j.source.Path,
			Object: j.source.Object,
			Status: domain.StatusSkipped,
			Err:    zerr.With(err, "source", j.source.Path),
		})
	}
	state.ready = nil

	for a := range state.waiting {
		if a.Result.Status.IsTerminal() {
			continue
		}
		a.Result = domain.ArchiveResult{
			Status:     domain.StatusSkipped,
			SkipReason: "build cancelled",
			Err:        zerr.With(zerr.Wrap(cause, domain.ErrArchiveSkipped.Error()), "output", a.Output),
		}
	}

	state.errs = append(state.errs, cause)
}

func compileSpanName(task *domain.CompileTask, src domain.SourceFile) string {
	rel, err := filepath.Rel(task.Root, src.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = src.Path
	}
	return "compile " + task.Target.String() + "/" + filepath.ToSlash(rel)
}
