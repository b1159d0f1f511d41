package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/smelt/internal/adapters/telemetry"
	"go.trai.ch/smelt/internal/core/ports"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr
}

func TestOTelTracer_Install(t *testing.T) {
	r := &recordingRenderer{}
	tracer := telemetry.NewOTelTracer("test")
	shutdown := tracer.Install(r)
	defer func() { _ = shutdown(context.Background()) }()

	ctx := context.Background()
	tracer.EmitPlan(ctx, "compile", []string{"compile z/adler32.c", "compile z/crc32.c"})

	buildCtx, build := tracer.Start(ctx, "build", ports.WithQuiet())

	_, ok := tracer.Start(buildCtx, "compile z/adler32.c")
	ok.End()

	_, bad := tracer.Start(buildCtx, "compile z/crc32.c")
	_, err := bad.Write([]byte("crc32.c:3: error: expected ';'\n"))
	require.NoError(t, err)
	bad.RecordError(errors.New("compilation failed"))
	bad.End()

	build.End()

	assert.Equal(t, []string{
		"plan compile [compile z/adler32.c, compile z/crc32.c]",
		"start compile z/adler32.c (child: true)",
		"done compile z/adler32.c",
		"start compile z/crc32.c (child: true)",
		`log compile z/crc32.c "crc32.c:3: error: expected ';'\n"`,
		"fail compile z/crc32.c: compilation failed",
	}, r.get())
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	ctx, span := otel.Tracer("test").Start(context.Background(), "root")
	tracer.EmitPlan(ctx, "feature_tests", []string{"HAVE_UNISTD_H"})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "plan_emitted", events[0].Name)
	assert.Contains(t, events[0].Attributes, attribute.String("stage", "feature_tests"))
	assert.Contains(t, events[0].Attributes, attribute.StringSlice("tasks", []string{"HAVE_UNISTD_H"}))
}

func TestOTelSpan_SetAttribute(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "attr-test")
	span.SetAttribute("str", "val")
	span.SetAttribute("int", 123)
	span.SetAttribute("int64", int64(456))
	span.SetAttribute("float", 3.14)
	span.SetAttribute("bool", true)
	span.SetAttribute("slice", []string{"a", "b"})
	span.SetAttribute("unknown", struct{}{})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("str", "val"),
		attribute.Int64("int", 123),
		attribute.Int64("int64", 456),
		attribute.Float64("float", 3.14),
		attribute.Bool("bool", true),
		attribute.StringSlice("slice", []string{"a", "b"}),
		attribute.String("unknown", "{}"),
	}, spans[0].Attributes())
}

func TestOTelSpan_WriteWithoutRenderer(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "log-test")
	n, err := span.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "log", events[0].Name)
	assert.Equal(t, "hello", events[0].Attributes[0].Value.AsString())
}

func TestQuietSpanIsMarked(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "build", ports.WithQuiet())
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), telemetry.QuietAttribute.Bool(true))
}
