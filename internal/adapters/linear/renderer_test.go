package linear_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/smelt/internal/adapters/linear"
	"go.trai.ch/zerr"
)

func newRenderer(t *testing.T, opts ...linear.Option) (*linear.Renderer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	var stdout, stderr bytes.Buffer
	return linear.NewRenderer(&stdout, &stderr, opts...), &stdout, &stderr
}

func TestRenderer_TaskLifecycle(t *testing.T) {
	r, stdout, stderr := newRenderer(t)
	require.NoError(t, r.Start(context.Background()))

	r.OnPlanEmit("compile", []string{"compile z/adler32.c", "compile z/crc32.c"})

	start := time.Now()
	r.OnTaskStart("span1", "", "compile z/adler32.c", start)
	r.OnTaskLog("span1", []byte("first line\nsecond "))
	r.OnTaskLog("span1", []byte("line\n"))
	r.OnTaskComplete("span1", start.Add(100*time.Millisecond), nil)

	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())

	assert.Equal(t,
		"[compile z/adler32.c] first line\n"+
			"[compile z/adler32.c] second line\n",
		stdout.String())
	assert.Equal(t,
		"● compile: 2 task(s)\n"+
			"[compile z/adler32.c] Starting...\n"+
			"[compile z/adler32.c] ✓ Completed in 100ms\n",
		stderr.String())
}

func TestRenderer_PartialLineFlushedOnComplete(t *testing.T) {
	r, stdout, _ := newRenderer(t)

	start := time.Now()
	r.OnTaskStart("span1", "", "task1", start)
	r.OnTaskLog("span1", []byte("partial"))
	assert.Empty(t, stdout.String())

	r.OnTaskComplete("span1", start, nil)
	assert.Equal(t, "[task1] partial\n", stdout.String())
}

func TestRenderer_TaskError(t *testing.T) {
	r, _, stderr := newRenderer(t)

	start := time.Now()
	r.OnTaskStart("span1", "", "compile z/crc32.c", start)
	r.OnTaskComplete("span1", start.Add(50*time.Millisecond), zerr.New("compilation failed"))

	assert.Contains(t, stderr.String(), "[compile z/crc32.c] ✗ Failed after 50ms: compilation failed\n")
}

func TestRenderer_Quiet(t *testing.T) {
	r, stdout, stderr := newRenderer(t, linear.WithQuiet())

	r.OnPlanEmit("compile", []string{"a", "b"})
	start := time.Now()
	r.OnTaskStart("ok", "", "compile a", start)
	r.OnTaskComplete("ok", start, nil)
	r.OnTaskStart("bad", "", "compile b", start)
	r.OnTaskLog("bad", []byte("b.c:1: error\n"))
	r.OnTaskComplete("bad", start, zerr.New("compilation failed"))

	assert.Equal(t, "[compile b] b.c:1: error\n", stdout.String())
	assert.Equal(t, "[compile b] ✗ Failed after 0s: compilation failed\n", stderr.String())
}

func TestRenderer_InterleavedTasks(t *testing.T) {
	r, stdout, _ := newRenderer(t)

	start := time.Now()
	r.OnTaskStart("span1", "", "task1", start)
	r.OnTaskStart("span2", "", "task2", start)

	r.OnTaskLog("span1", []byte("task1 line 1\n"))
	r.OnTaskLog("span2", []byte("task2 line 1\n"))
	r.OnTaskLog("span1", []byte("task1 line 2\n"))
	r.OnTaskLog("span2", []byte("task2 line 2\n"))

	assert.Equal(t,
		"[task1] task1 line 1\n"+
			"[task2] task2 line 1\n"+
			"[task1] task1 line 2\n"+
			"[task2] task2 line 2\n",
		stdout.String())
}

func TestRenderer_NoANSIWithNoColor(t *testing.T) {
	r, _, stderr := newRenderer(t)

	start := time.Now()
	r.OnTaskStart("span1", "", "task1", start)
	r.OnTaskComplete("span1", start, nil)

	assert.NotContains(t, stderr.String(), "\x1b[")
}

func TestRenderer_UnknownSpan(t *testing.T) {
	r, stdout, stderr := newRenderer(t)

	r.OnTaskLog("unknown-span", []byte("ignored\n"))
	r.OnTaskComplete("unknown-span", time.Now(), nil)

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRenderer_EmptyLines(t *testing.T) {
	r, stdout, _ := newRenderer(t)

	r.OnTaskStart("span1", "", "task1", time.Now())
	r.OnTaskLog("span1", []byte("\n"))
	r.OnTaskLog("span1", []byte("\r\n"))

	assert.Empty(t, stdout.String())
}

func TestRenderer_StopFlushesBuffers(t *testing.T) {
	r, stdout, _ := newRenderer(t)

	start := time.Now()
	r.OnTaskStart("span1", "", "task1", start)
	r.OnTaskStart("span2", "", "task2", start)
	r.OnTaskLog("span1", []byte("partial1"))
	r.OnTaskLog("span2", []byte("partial2"))

	require.NoError(t, r.Stop())

	assert.Contains(t, stdout.String(), "[task1] partial1\n")
	assert.Contains(t, stdout.String(), "[task2] partial2\n")
}
