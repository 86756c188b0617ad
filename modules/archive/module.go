// Package archive provides the built-in "archive" action: it bundles the
// step's consumed artifacts into a single gzipped tarball, produced under the
// name given by the "name" parameter (default "archive.tar.gz").
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vk/conveyorgo/internal/ctxlog"
	"github.com/vk/conveyorgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Run is the handler for the "archive" action.
func Run(ctx context.Context, in *registry.ActionInput) (map[string][]byte, error) {
	logger := ctxlog.FromContext(ctx)

	name := in.With["name"]
	if name == "" {
		name = "archive.tar.gz"
	}
	if len(in.Artifacts) == 0 {
		return nil, fmt.Errorf("archive action received no artifacts to bundle")
	}

	// Stable member order keeps the tarball reproducible across runs.
	members := make([]string, 0, len(in.Artifacts))
	for member := range in.Artifacts {
		members = append(members, member)
	}
	sort.Strings(members)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, member := range members {
		data := in.Artifacts[member]
		hdr := &tar.Header{
			Name:    member,
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: time.Unix(0, 0),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("writing tar header for %q: %w", member, err)
		}
		if _, err := tw.Write(data); err != nil {
			return nil, fmt.Errorf("writing tar member %q: %w", member, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing tarball: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("finalizing gzip stream: %w", err)
	}

	logger.Info("Artifacts archived.", "archive", name, "members", len(members), "size", buf.Len())
	return map[string][]byte{name: buf.Bytes()}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("archive", Run)
}
