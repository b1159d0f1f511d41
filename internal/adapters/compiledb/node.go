package compiledb

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/smelt/internal/core/ports"
)

// NodeID is the unique identifier for the compile database Graft node.
const NodeID graft.ID = "adapter.compiledb"

func init() {
	graft.Register(graft.Node[ports.CompileDatabase]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.CompileDatabase, error) {
			return NewWriter(), nil
		},
	})
}
