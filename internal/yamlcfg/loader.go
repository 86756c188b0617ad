// Package yamlcfg loads pipeline declarations written in YAML. The dialect
// mirrors the HCL one; gating conditions are expression strings handed to the
// shared expression parser.
package yamlcfg

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/ctxlog"
)

// Loader implements config.Loader for the YAML dialect.
type Loader struct{}

// NewLoader creates a YAML declaration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, config.Declarationf("reading %s: %v", path, err)
	}

	var root fileSchema
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, config.Declarationf("parsing %s: %v", path, err)
	}
	if root.Pipeline == nil {
		return nil, config.Declarationf("%s: missing top-level pipeline mapping", path)
	}

	model, err := translate(root.Pipeline, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("YAML declaration translated.", "path", path, "jobs", len(model.Pipeline.Jobs))
	return model, nil
}
