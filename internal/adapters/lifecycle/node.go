package lifecycle

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/phi/internal/adapters/logger"
	"go.trai.ch/phi/internal/core/ports"
)

// NodeID is the unique identifier for the lifecycle Graft node.
const NodeID graft.ID = "adapter.lifecycle"

func init() {
	graft.Register(graft.Node[*Hooks]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Hooks, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log), nil
		},
	})
}
