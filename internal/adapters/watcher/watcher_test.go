package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/smelt/internal/adapters/watcher"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/smelt/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// nextEvent returns the first event for path, failing after a timeout.
func nextEvent(t *testing.T, events <-chan ports.WatchEvent, path string) ports.WatchEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Path == path {
				return ev
			}
		case <-timeout:
			t.Fatalf("no event for %s", path)
			return ports.WatchEvent{}
		}
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	root := t.TempDir()
	build := filepath.Join(root, "build")
	require.NoError(t, os.MkdirAll(filepath.Join(build, "obj"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "zlib"), 0o750))

	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, []string{root, filepath.Join(root, "missing")}, []string{build}))
	defer func() { _ = w.Stop() }()

	events := make(chan ports.WatchEvent, 100)
	go func() {
		for ev := range w.Events() {
			events <- ev
		}
		close(events)
	}()

	// Changes below the skipped build directory are not reported.
	require.NoError(t, os.WriteFile(filepath.Join(build, "obj", "a.o"), []byte("obj"), 0o600))

	src := filepath.Join(root, "zlib", "adler32.c")
	require.NoError(t, os.WriteFile(src, []byte("int a;"), 0o600))
	ev := nextEvent(t, events, src)
	assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)

	// Directories created after Start are watched too.
	sub := filepath.Join(root, "contrib")
	require.NoError(t, os.Mkdir(sub, 0o750))
	nextEvent(t, events, sub)

	nested := filepath.Join(sub, "minizip.c")
	require.NoError(t, eventuallyWrite(t, events, nested))

	cancel()
	for ev := range events {
		assert.NotContains(t, ev.Path, filepath.Join(build, "obj"))
	}
}

// eventuallyWrite rewrites path until an event for it arrives. The directory
// watch is added asynchronously after its creation event.
func eventuallyWrite(t *testing.T, events <-chan ports.WatchEvent, path string) error {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
			return err
		}
		select {
		case ev := <-events:
			if ev.Path == path {
				return nil
			}
		case <-time.After(100 * time.Millisecond):
		}
	}
	t.Fatalf("no event for %s", path)
	return nil
}
