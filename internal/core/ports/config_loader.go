package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration reachable from the given working directory and
	// returns the resolved pipeline. A missing config file yields the defaults.
	Load(cwd string) (*domain.Pipeline, error)

	// DiscoverRoot walks up from cwd to find the project root.
	// Returns the directory containing kiln.yaml, or cwd when none exists.
	DiscoverRoot(cwd string) (string, error)
}
