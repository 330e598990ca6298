package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/phi/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/phi/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/phi/internal/adapters/lifecycle" //nolint:depguard // Wired in app layer
	"go.trai.ch/phi/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/phi/internal/core/ports"
	"go.trai.ch/phi/internal/engine/loader"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components holds what the entry point needs besides the App itself.
type Components struct {
	App       *App
	Logger    ports.Logger
	Lifecycle *lifecycle.Hooks
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			config.GeneratorNodeID,
			loader.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			generator, err := graft.Dep[ports.ConfigGenerator](ctx)
			if err != nil {
				return nil, err
			}

			factory, err := graft.Dep[*loader.Factory](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(configLoader, generator, factory, fs.NewWalker(), log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			lifecycle.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	hooks, err := graft.Dep[*lifecycle.Hooks](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Lifecycle: hooks,
	}, nil
}
