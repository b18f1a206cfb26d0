// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/cmdrule/internal/adapters/config"
	_ "go.trai.ch/cmdrule/internal/adapters/fingerprint"
	_ "go.trai.ch/cmdrule/internal/adapters/logger"
	_ "go.trai.ch/cmdrule/internal/adapters/ninja"
	_ "go.trai.ch/cmdrule/internal/adapters/store"
	_ "go.trai.ch/cmdrule/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/cmdrule/internal/app"
)
