package generator_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/smelt/internal/adapters/configure"
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/smelt/internal/core/ports/mocks"
	"go.trai.ch/smelt/internal/engine/generator"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newTracer(ctrl *gomock.Controller) *mocks.MockTracer {
	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().Write(gomock.Any()).Return(0, nil).AnyTimes()

	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()
	return tracer
}

func newTask(files ...*domain.GeneratedFile) *domain.CompileTask {
	task := domain.NewCompileTask(domain.NewInternedString("zlib"))
	for _, f := range files {
		f.Target = task.Target
	}
	task.Generated = files
	return task
}

func TestMergeDefinitions(t *testing.T) {
	merged, err := generator.MergeDefinitions(
		map[string]any{"VERSION": "1.3.1"},
		map[string]bool{"HAVE_UNISTD_H": true, "HAVE_WINDOWS_H": false},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"VERSION":        "1.3.1",
		"HAVE_UNISTD_H":  true,
		"HAVE_WINDOWS_H": false,
	}, merged)

	_, err = generator.MergeDefinitions(
		map[string]any{"HAVE_UNISTD_H": "1"},
		map[string]bool{"HAVE_UNISTD_H": true},
	)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrDefinitionCollision.Error())

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "HAVE_UNISTD_H", zErr.Metadata()["variable"])
}

func TestGenerate_RendersConfigureTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "zconf.h.in")
	require.NoError(t, os.WriteFile(tmpl, []byte("#cmakedefine HAVE_UNISTD_H 1\n#cmakedefine HAVE_WINDOWS_H 1\n#define V \"@VERSION@\"\n"), 0o600))

	out := filepath.Join(dir, "gen", "zlib", "zconf.h")
	file := &domain.GeneratedFile{
		Template:    tmpl,
		Output:      out,
		Kind:        domain.GeneratorConfigure,
		Definitions: map[string]any{"VERSION": "1.3.1"},
	}

	g := generator.New(newTracer(ctrl), configure.NewRenderer(), configure.NewCopier())
	assert.Equal(t, []string{"cmake_configure", "copy"}, g.Kinds())

	err := g.Generate(context.Background(), newTask(file), map[string]bool{"HAVE_UNISTD_H": true, "HAVE_WINDOWS_H": false})
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "#define HAVE_UNISTD_H 1\n/* #undef HAVE_WINDOWS_H */\n#define V \"1.3.1\"\n", string(got))
	assert.Equal(t, domain.StatusSucceeded, file.Result.Status)
}

func TestGenerate_CollectsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := t.TempDir()

	renderer := mocks.NewMockTemplateRenderer(ctrl)
	renderer.EXPECT().Kind().Return("copy").AnyTimes()
	renderer.EXPECT().Render("a.in", filepath.Join(dir, "a.h"), gomock.Any()).Return(nil)
	renderer.EXPECT().Render("missing.in", filepath.Join(dir, "b.h"), gomock.Any()).
		Return(zerr.With(domain.ErrTemplateNotFound, "template", "missing.in"))

	collision := &domain.GeneratedFile{
		Template:    "c.in",
		Output:      filepath.Join(dir, "c.h"),
		Kind:        domain.GeneratorCopy,
		Definitions: map[string]any{"HAVE_X": 1},
	}
	ok := &domain.GeneratedFile{Template: "a.in", Output: filepath.Join(dir, "a.h"), Kind: domain.GeneratorCopy}
	missing := &domain.GeneratedFile{Template: "missing.in", Output: filepath.Join(dir, "b.h"), Kind: domain.GeneratorCopy}
	unknown := &domain.GeneratedFile{Template: "d.in", Output: filepath.Join(dir, "d.h"), Kind: "m4"}

	g := generator.New(newTracer(ctrl), renderer)
	err := g.Generate(context.Background(), newTask(collision, ok, missing, unknown), map[string]bool{"HAVE_X": true})
	require.Error(t, err)

	assert.ErrorContains(t, err, domain.ErrDefinitionCollision.Error())
	assert.ErrorContains(t, err, domain.ErrGenerationFailed.Error())
	assert.ErrorContains(t, err, domain.ErrTemplateNotFound.Error())
	assert.ErrorContains(t, err, domain.ErrUnknownGenerator.Error())

	assert.Equal(t, domain.StatusFailed, collision.Result.Status)
	assert.Equal(t, domain.StatusSucceeded, ok.Result.Status)
	assert.Equal(t, domain.StatusFailed, missing.Result.Status)
	assert.Equal(t, domain.StatusFailed, unknown.Result.Status)

	var zErr *zerr.Error
	require.ErrorAs(t, missing.Result.Err, &zErr)
	assert.Equal(t, "missing.in", zErr.Metadata()["template"])
	assert.Equal(t, filepath.Join(dir, "b.h"), zErr.Metadata()["output"])

	task := newTask()
	task.Generated = []*domain.GeneratedFile{collision, ok}
	assert.False(t, task.GenerationSucceeded())
}

func TestGenerate_NoFiles(t *testing.T) {
	g := generator.New(nil)
	require.NoError(t, g.Generate(context.Background(), newTask(), nil))
}
