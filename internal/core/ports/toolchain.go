package ports

import (
	"context"

	"go.trai.ch/smelt/internal/core/domain"
)

// Toolchain compiles single sources and archives object files for one platform.
//
//go:generate mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type Toolchain interface {
	// Info returns the static properties of the toolchain.
	Info() domain.ToolchainInfo

	// CompileCommand returns the command line that Compile would run.
	CompileCommand(req domain.CompileRequest) []string

	// Compile compiles one source into req.Object.
	// A failing compiler is reported through the result's exit code, not the error.
	Compile(ctx context.Context, req domain.CompileRequest) domain.CommandResult

	// ArchiveCommand returns the command line that Archive would run.
	ArchiveCommand(objects []string, output string) []string

	// Archive links objects into the static archive output.
	Archive(ctx context.Context, objects []string, output string) domain.CommandResult
}

// ToolchainFactory creates a Toolchain from its configuration.
type ToolchainFactory interface {
	New(cfg domain.ToolchainConfig) (Toolchain, error)
}
