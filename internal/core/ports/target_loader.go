package ports

import (
	"context"

	"go.trai.ch/smelt/internal/core/domain"
)

// TargetLoader evaluates a target script for a platform.
//
//go:generate mockgen -source=target_loader.go -destination=mocks/mock_target_loader.go -package=mocks
type TargetLoader interface {
	// Load returns the targets the script at path defines for platform.
	// A script may define no targets for a platform.
	// Relative paths in the returned targets are resolved against the script's directory.
	Load(ctx context.Context, path string, platform domain.Platform) ([]*domain.Target, error)

	// Extensions lists the file extensions this loader handles, e.g. ".yaml".
	Extensions() []string
}
