// Package publish provides the built-in "publish" action: it uploads one
// consumed artifact to a pre-signed URL via HTTP PUT. Parameters: "artifact"
// (required) names the payload, "upload_url" (required) is the destination.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/vk/conveyorgo/internal/ctxlog"
	"github.com/vk/conveyorgo/internal/registry"
	"github.com/vk/conveyorgo/internal/stepexec"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// httpClient is shared across publish invocations to reuse TCP connections.
var httpClient = &http.Client{}

// Run is the handler for the "publish" action.
func Run(ctx context.Context, in *registry.ActionInput) (map[string][]byte, error) {
	logger := ctxlog.FromContext(ctx).With("action", "publish")

	name := in.With["artifact"]
	if name == "" {
		return nil, fmt.Errorf("publish action requires an 'artifact' parameter")
	}
	uploadURL := in.With["upload_url"]
	if uploadURL == "" {
		return nil, fmt.Errorf("publish action requires an 'upload_url' parameter")
	}
	data, ok := in.Artifacts[name]
	if !ok {
		return nil, fmt.Errorf("publish action did not receive artifact %q, declare it in consumes", name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	logger.Info("Uploading artifact.", "artifact", name, "size", len(data), "contentType", contentType)

	resp, err := httpClient.Do(req)
	if err != nil {
		// The destination being unreachable is a substrate problem; let the
		// scheduler retry it.
		return nil, fmt.Errorf("executing upload request: %v: %w", err, stepexec.ErrInfrastructure)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	logger.Info("Artifact uploaded.", "status", resp.Status)
	return nil, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("publish", Run)
}
