package loader

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/phi/internal/adapters/lifecycle" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/phi/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/phi/internal/adapters/starlark"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/phi/internal/core/ports"
)

// NodeID is the unique identifier for the loader factory Graft node.
const NodeID graft.ID = "engine.loader_factory"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			starlark.NodeID,
			lifecycle.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			compiler, err := graft.Dep[ports.Compiler](ctx)
			if err != nil {
				return nil, err
			}

			hooks, err := graft.Dep[*lifecycle.Hooks](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(log, compiler, hooks), nil
		},
	})
}
