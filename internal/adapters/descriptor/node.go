package descriptor

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/smelt/internal/core/ports"
)

// NodeID is the unique identifier for the target loader Graft node.
const NodeID graft.ID = "adapter.descriptor"

func init() {
	graft.Register(graft.Node[ports.TargetLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TargetLoader, error) {
			return NewSet(NewYAMLLoader(), NewHCLLoader()), nil
		},
	})
}
