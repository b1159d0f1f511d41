package ports

import "go.trai.ch/smelt/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds smelt.yaml at or above cwd and returns the validated project.
	Load(cwd string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to the directory containing smelt.yaml.
	DiscoverRoot(cwd string) (string, error)
}
