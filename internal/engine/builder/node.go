package builder

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/smelt/internal/adapters/compiledb" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/smelt/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/smelt/internal/adapters/toolchain" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/smelt/internal/engine/generator"
)

// NodeID is the unique identifier for the builder factory Graft node.
const NodeID graft.ID = "engine.builder"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			toolchain.NodeID,
			generator.NodeID,
			telemetry.TracerNodeID,
			compiledb.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			toolchains, err := graft.Dep[ports.ToolchainFactory](ctx)
			if err != nil {
				return nil, err
			}

			gen, err := graft.Dep[*generator.Generator](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			compileDB, err := graft.Dep[ports.CompileDatabase](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(toolchains, gen, tracer, compileDB), nil
		},
	})
}
