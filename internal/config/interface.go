package config

import "context"

// Loader is the interface for a format-specific declaration loader. Load
// reads a declaration from the given path, translates it into the
// format-agnostic model, and validates it eagerly.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}
