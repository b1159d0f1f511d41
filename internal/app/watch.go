package app

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/smelt/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/zerr"
)

// Watch builds the project and rebuilds it whenever a file below the
// project root or an external target root changes content.
//
// Configuration errors of the first load are returned. Later load and build
// failures are logged and watching continues. Watch returns nil when ctx is
// done or the user quits the interactive view.
func (a *App) Watch(ctx context.Context, cwd string, opts BuildOptions) error {
	s, err := a.load(ctx, cwd, opts.Parallelism)
	if err != nil {
		return err
	}

	if !a.rebuild(ctx, s, opts.OutputMode) {
		return nil
	}

	roots := s.roots()
	skip := []string{s.project.Layout().BuildDir}

	snapshot, err := a.hasher.Snapshot(roots, skip)
	if err != nil {
		return zerr.Wrap(err, "failed to hash sources")
	}
	if err := a.watcher.Start(ctx, roots, skip); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow)
	go func() {
		defer debouncer.Close()
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
	}()

	a.logger.Info(fmt.Sprintf("watching %s for changes", s.project.Root))

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths, ok := <-debouncer.C():
			if !ok {
				return nil
			}
			if !a.hasher.Refresh(snapshot, paths, skip) {
				continue
			}
			a.logger.Info(fmt.Sprintf("%s changed, rebuilding", relTo(s.project.Root, paths[0])))

			next, err := a.load(ctx, cwd, opts.Parallelism)
			if err != nil {
				a.logger.Error(err)
				continue
			}
			if !a.rebuild(ctx, next, opts.OutputMode) {
				return nil
			}
		}
	}
}

// rebuild runs one build and logs its failure. It returns false when the
// user quit the interactive view.
func (a *App) rebuild(ctx context.Context, s *session, outputMode string) bool {
	err := a.run(ctx, s, outputMode)
	switch {
	case errors.Is(err, domain.ErrInterrupted):
		return false
	case err != nil && ctx.Err() == nil:
		a.logger.Error(err)
	}
	return true
}
