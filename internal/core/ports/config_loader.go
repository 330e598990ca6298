package ports

import "go.trai.ch/phi/internal/core/domain"

// ConfigLoader defines the interface for loading the engine configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration starting at cwd and returns the effective settings.
	// A missing configuration file is not an error.
	Load(cwd string) (*domain.Settings, error)

	// DiscoverRoot walks up from cwd to find the project root.
	// It returns the root and the config file path, which is empty when none exists.
	DiscoverRoot(cwd string) (root, configPath string, err error)
}

// ConfigGenerator writes, removes and renders configuration files.
type ConfigGenerator interface {
	// Init writes the default configuration below root and returns its path.
	Init(root string, force bool) (string, error)

	// Reset removes the configuration files below root and reports whether any existed.
	Reset(root string) (bool, error)

	// Render formats the effective settings for display.
	Render(settings *domain.Settings) ([]byte, error)
}
