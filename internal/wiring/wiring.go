// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/smelt/internal/adapters/compiledb"
	_ "go.trai.ch/smelt/internal/adapters/config"
	_ "go.trai.ch/smelt/internal/adapters/configure"
	_ "go.trai.ch/smelt/internal/adapters/descriptor"
	_ "go.trai.ch/smelt/internal/adapters/fs"
	_ "go.trai.ch/smelt/internal/adapters/logger"
	_ "go.trai.ch/smelt/internal/adapters/shell"
	_ "go.trai.ch/smelt/internal/adapters/store"
	_ "go.trai.ch/smelt/internal/adapters/telemetry"
	_ "go.trai.ch/smelt/internal/adapters/toolchain"
	_ "go.trai.ch/smelt/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/smelt/internal/app"
	_ "go.trai.ch/smelt/internal/engine/builder"
	_ "go.trai.ch/smelt/internal/engine/generator"
)
