// Package hclcfg loads pipeline declarations written in HCL. Gating
// conditions are native HCL expressions captured unevaluated; everything else
// is decoded literally into the format-agnostic config model.
package hclcfg

import (
	"context"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/ctxlog"
)

// Loader implements config.Loader for the HCL dialect.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates an HCL declaration loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, config.Declarationf("%s", diags.Error())
	}

	var root fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, config.Declarationf("%s", diags.Error())
	}
	if len(root.Pipelines) != 1 {
		return nil, config.Declarationf("expected exactly one pipeline block in %s, found %d", path, len(root.Pipelines))
	}

	model := translate(root.Pipelines[0])
	logger.Debug("HCL declaration translated.", "path", path, "jobs", len(model.Pipeline.Jobs))
	return model, nil
}
