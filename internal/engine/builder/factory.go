package builder

import (
	"go.trai.ch/smelt/internal/core/domain"
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/smelt/internal/engine/generator"
	"go.trai.ch/zerr"
)

// Factory creates a Builder for a loaded project.
type Factory struct {
	toolchains ports.ToolchainFactory
	generator  *generator.Generator
	tracer     ports.Tracer
	compileDB  ports.CompileDatabase
}

// NewFactory creates a Factory.
func NewFactory(
	toolchains ports.ToolchainFactory,
	gen *generator.Generator,
	tracer ports.Tracer,
	compileDB ports.CompileDatabase,
) *Factory {
	return &Factory{
		toolchains: toolchains,
		generator:  gen,
		tracer:     tracer,
		compileDB:  compileDB,
	}
}

// New creates a Builder with an empty graph for project.
func (f *Factory) New(project *domain.Project) (*Builder, error) {
	tc, err := f.toolchains.New(project.Toolchain)
	if err != nil {
		return nil, zerr.With(err, "project", project.Name)
	}

	layout := project.Layout()
	build := project.Build
	build.Dir = layout.BuildDir

	return New(Config{
		Project: project.Name,
		Layout:  layout,
		Build:   build,
		Options: project.Options.WithDefaults(),
	}, tc, f.generator, f.tracer, f.compileDB), nil
}
