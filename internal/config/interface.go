package config

import "context"

// Loader is the interface for a format-specific manifest file loader.
type Loader interface {
	// Load reads a single manifest file and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, vars Variables, path string) (*Model, error)
}
