// Package print provides the built-in "print" action: it logs its parameters
// and the names of the artifacts it received. Useful for pipeline debugging.
package print

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/conveyorgo/internal/ctxlog"
	"github.com/vk/conveyorgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Run is the handler for the "print" action.
func Run(ctx context.Context, in *registry.ActionInput) (map[string][]byte, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("print action invoked", "params", len(in.With), "artifacts", len(in.Artifacts))

	// Sort keys for consistent output.
	keys := make([]string, 0, len(in.With))
	for k := range in.With {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("      %s = %q\n", k, in.With[k])
	}

	names := make([]string, 0, len(in.Artifacts))
	for name := range in.Artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("      artifact %s (%d bytes)\n", name, len(in.Artifacts[name]))
	}

	return nil, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("print", Run)
}
