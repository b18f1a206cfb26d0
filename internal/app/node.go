package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cmdrule/internal/adapters/config"      //nolint:depguard // Wired in app layer
	"go.trai.ch/cmdrule/internal/adapters/fingerprint" //nolint:depguard // Wired in app layer
	"go.trai.ch/cmdrule/internal/adapters/logger"      //nolint:depguard // Wired in app layer
	"go.trai.ch/cmdrule/internal/adapters/ninja"       //nolint:depguard // Wired in app layer
	"go.trai.ch/cmdrule/internal/adapters/store"       //nolint:depguard // Wired in app layer
	"go.trai.ch/cmdrule/internal/adapters/telemetry"   //nolint:depguard // Wired in app layer
	"go.trai.ch/cmdrule/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components the CLI needs.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			store.NodeID,
			ninja.NodeID,
			fingerprint.NodeID,
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
			telemetry.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.RuleLoader](ctx)
	if err != nil {
		return nil, err
	}

	recordStore, err := graft.Dep[ports.RecordStore](ctx)
	if err != nil {
		return nil, err
	}

	generator, err := graft.Dep[ports.Generator](ctx)
	if err != nil {
		return nil, err
	}

	fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, recordStore, generator, fingerprinter, log), nil
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

	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{App: app, Logger: log, Telemetry: tel}, nil
}
