package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/smelt/internal/adapters/config"     //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/adapters/descriptor" //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/adapters/fs"         //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/adapters/logger"     //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/adapters/store"      //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/adapters/telemetry"  //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/adapters/watcher"    //nolint:depguard // Wired in app layer
	"go.trai.ch/smelt/internal/core/ports"
	"go.trai.ch/smelt/internal/engine/builder"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			descriptor.NodeID,
			builder.NodeID,
			store.NodeID,
			fs.HasherNodeID,
			watcher.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	targets, err := graft.Dep[ports.TargetLoader](ctx)
	if err != nil {
		return nil, err
	}

	builders, err := graft.Dep[*builder.Factory](ctx)
	if err != nil {
		return nil, err
	}

	reports, err := graft.Dep[ports.ReportStore](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, targets, builders, reports, hasher, w, tracer, log), nil
}
