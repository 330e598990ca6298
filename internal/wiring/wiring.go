// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/phi/internal/adapters/config"
	_ "go.trai.ch/phi/internal/adapters/lifecycle"
	_ "go.trai.ch/phi/internal/adapters/logger"
	_ "go.trai.ch/phi/internal/adapters/starlark"
	// Register app and engine nodes.
	_ "go.trai.ch/phi/internal/app"
	_ "go.trai.ch/phi/internal/engine/loader"
)
