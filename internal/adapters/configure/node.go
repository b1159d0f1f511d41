package configure

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/smelt/internal/core/ports"
)

// NodeID is the unique identifier for the template renderers Graft node.
const NodeID graft.ID = "adapter.configure"

func init() {
	graft.Register(graft.Node[[]ports.TemplateRenderer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) ([]ports.TemplateRenderer, error) {
			return []ports.TemplateRenderer{NewRenderer(), NewCopier()}, nil
		},
	})
}
