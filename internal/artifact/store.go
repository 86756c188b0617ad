// Package artifact implements the per-run artifact store: named payloads
// produced by one job instance and consumed by downstream instances within
// the same run. Namespacing is per-run, so identical names in different runs
// never collide.
package artifact

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no producer has completed successfully
// for that name within the run.
var ErrNotFound = errors.New("artifact not found")

// ErrConflict is returned by Put when a second producer attempts to write an
// already-produced (run, name) pair. Writes are append-only, never silently
// overwritten.
var ErrConflict = errors.New("artifact already produced")

// Ref describes one stored artifact.
type Ref struct {
	// Name is the artifact name, unique within its run.
	Name string
	// Producer is the ID of the job instance that produced it.
	Producer string
	// Size is the payload size in bytes.
	Size int64
	// Location is a backend-specific payload locator.
	Location string
}

// Store is the artifact store contract shared by all backends.
type Store interface {
	// Put stores the payload under (runID, name). A second Put for the same
	// pair fails with ErrConflict.
	Put(ctx context.Context, runID, name, producer string, r io.Reader) (Ref, error)
	// Get returns the payload for (runID, name), or ErrNotFound.
	Get(ctx context.Context, runID, name string) (io.ReadCloser, error)
	// Manifest lists everything produced within the run, in production order
	// where the backend can preserve it.
	Manifest(ctx context.Context, runID string) ([]Ref, error)
}
