package ninja

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cmdrule/internal/core/ports"
)

// NodeID is the unique identifier for the Ninja generator Graft node.
const NodeID graft.ID = "adapter.ninja_generator"

func init() {
	graft.Register(graft.Node[ports.Generator]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Generator, error) {
			return NewGenerator(), nil
		},
	})
}
