// Package generator renders the generated files of a target before it compiles.
package generator

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/zerr"
)

// Generator dispatches each generated file to the renderer for its kind.
type Generator struct {
	renderers map[string]ports.TemplateRenderer
	tracer    ports.Tracer
}

// New creates a Generator from the given renderers, keyed by their Kind.
func New(tracer ports.Tracer, renderers ...ports.TemplateRenderer) *Generator {
	g := &Generator{
		renderers: make(map[string]ports.TemplateRenderer, len(renderers)),
		tracer:    tracer,
	}
	for _, r := range renderers {
		g.renderers[r.Kind()] = r
	}
	return g
}

// Kinds returns the registered generator kinds, sorted.
func (g *Generator) Kinds() []string {
	return slices.Sorted(maps.Keys(g.renderers))
}

// Generate renders every generated file of task. Feature test results are
// merged into each file's definitions. Every file is attempted; the failures
// are returned joined and also recorded on the files.
func (g *Generator) Generate(ctx context.Context, task *domain.CompileTask, results map[string]bool) error {
	if len(task.Generated) == 0 {
		return nil
	}

	_, span := g.tracer.Start(ctx, "generate "+task.Target.String())
	defer span.End()

	var errs []error
	for _, file := range task.Generated {
		start := time.Now()
		err := g.render(file, results)
		file.Result = domain.GenerationResult{Status: domain.StatusSucceeded, Duration: time.Since(start)}
		if err != nil {
			file.Result.Status = domain.StatusFailed
			file.Result.Err = err
			errs = append(errs, err)
			_, _ = span.Write([]byte(err.Error() + "\n"))
		}
	}

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (g *Generator) render(file *domain.GeneratedFile, results map[string]bool) error {
	defs, err := MergeDefinitions(file.Definitions, results)
	if err != nil {
		return zerr.With(zerr.With(err, "target", file.Target.String()), "output", file.Output)
	}

	renderer, ok := g.renderers[string(file.Kind)]
	if !ok {
		return zerr.With(zerr.With(domain.ErrUnknownGenerator, "kind", string(file.Kind)), "output", file.Output)
	}

	if err := os.MkdirAll(filepath.Dir(file.Output), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrGenerationFailed.Error()), "output", file.Output)
	}

	if err := renderer.Render(file.Template, file.Output, defs); err != nil {
		err = zerr.Wrap(err, domain.ErrGenerationFailed.Error())
		err = zerr.With(err, "target", file.Target.String())
		err = zerr.With(err, "template", file.Template)
		return zerr.With(err, "output", file.Output)
	}
	return nil
}

// MergeDefinitions combines explicit definitions with feature test results.
// A variable defined by both is a collision.
func MergeDefinitions(explicit map[string]any, results map[string]bool) (map[string]any, error) {
	merged := make(map[string]any, len(explicit)+len(results))
	maps.Copy(merged, explicit)

	for _, name := range slices.Sorted(maps.Keys(results)) {
		if _, ok := merged[name]; ok {
			return nil, zerr.With(domain.ErrDefinitionCollision, "variable", name)
		}
		merged[name] = results[name]
	}
	return merged, nil
}
