// Package archiver links compiled objects into static archives.
package archiver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/zerr"
)

// Stage plans and runs archive jobs.
type Stage struct {
	toolchain ports.Toolchain
	tracer    ports.Tracer
}

// New creates a Stage archiving through toolchain.
func New(toolchain ports.Toolchain, tracer ports.Tracer) *Stage {
	return &Stage{toolchain: toolchain, tracer: tracer}
}

// Plan groups tasks by their library path, in order of first appearance.
func (s *Stage) Plan(tasks []*domain.CompileTask) []*domain.ArchiveTask {
	var archives []*domain.ArchiveTask
	byOutput := make(map[string]*domain.ArchiveTask)
	for _, task := range tasks {
		a, ok := byOutput[task.LibPath]
		if !ok {
			a = &domain.ArchiveTask{
				Output: task.LibPath,
				Result: domain.ArchiveResult{Status: domain.StatusPending},
			}
			byOutput[task.LibPath] = a
			archives = append(archives, a)
		}
		a.Sources = append(a.Sources, task)
	}
	return archives
}

// Archive links the objects of every contributing task into a.Output.
// The archive is skipped when any contributing source did not compile.
// The returned error is also recorded on a.Result.
func (s *Stage) Archive(ctx context.Context, a *domain.ArchiveTask) error {
	name := filepath.Base(a.Output)

	var failed []string
	for _, task := range a.Sources {
		if !task.Succeeded() {
			failed = append(failed, task.Target.String())
		}
	}
	if len(failed) > 0 {
		err := zerr.With(domain.ErrArchiveSkipped, "output", a.Output)
		err = zerr.With(err, "targets", strings.Join(failed, ", "))
		a.Result = domain.ArchiveResult{
			Status:     domain.StatusSkipped,
			SkipReason: "Cannot create " + name + " - compilation failed",
			Err:        err,
		}
		return err
	}

	a.Objects = a.Objects[:0]
	for _, task := range a.Sources {
		a.Objects = append(a.Objects, task.Objects()...)
	}

	ctx, span := s.tracer.Start(ctx, "archive "+name)
	defer span.End()

	a.Result = domain.ArchiveResult{Status: domain.StatusRunning}
	start := time.Now()

	// ar appends to an existing archive, so objects of a previous build would survive.
	if err := os.Remove(a.Output); err != nil && !errors.Is(err, fs.ErrNotExist) {
		err = zerr.With(zerr.Wrap(err, domain.ErrArchiveFailed.Error()), "output", a.Output)
		return s.fail(span, a, start, nil, "", err)
	}

	res := s.toolchain.Archive(ctx, a.Objects, a.Output)
	log := res.Log()
	if log != "" {
		_, _ = span.Write([]byte(log))
	}

	switch {
	case res.Err != nil:
		err := zerr.With(zerr.Wrap(res.Err, domain.ErrArchiveFailed.Error()), "output", a.Output)
		return s.fail(span, a, start, res.Command, log, err)
	case res.ExitCode != 0:
		err := zerr.With(domain.ErrArchiveFailed, "output", a.Output)
		err = zerr.With(err, "exit_code", res.ExitCode)
		return s.fail(span, a, start, res.Command, log, err)
	}

	a.Result = domain.ArchiveResult{
		Status:   domain.StatusSucceeded,
		Command:  res.Command,
		Log:      log,
		Duration: time.Since(start),
	}
	return nil
}

func (s *Stage) fail(span ports.Span, a *domain.ArchiveTask, start time.Time, cmd []string, log string, err error) error {
	span.RecordError(err)
	a.Result = domain.ArchiveResult{
		Status:   domain.StatusFailed,
		Command:  cmd,
		Log:      log,
		Duration: time.Since(start),
		Err:      err,
	}
	return err
}
