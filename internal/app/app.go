// Package app wires the engine together: logger, declaration loader, action
// registry, artifact store and scheduler.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/conveyorgo/internal/artifact"
	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/ctxlog"
	"github.com/vk/conveyorgo/internal/registry"
	"github.com/vk/conveyorgo/internal/stepexec"
)

// App encapsulates the engine's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	store    artifact.Store
	exec     stepexec.Executor
	cfg      *Config
}

// NewApp constructs a fully initialized App: the declaration is loaded and
// validated eagerly, so a broken pipeline is rejected here, before any run
// starts. Extra modules (typically from tests) are registered after the core
// set.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, extra ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	model, err := loader.Load(ctx, cfg.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("loading declaration: %w", err)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Declaration loaded and validated.", "pipeline", model.Pipeline.Name)

	reg := registry.New()
	for _, mod := range coreModules {
		mod.Register(reg)
	}
	for _, mod := range extra {
		mod.Register(reg)
	}
	logger.Debug("Actions registered.", "count", reg.Len())

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
		store:    store,
		exec:     stepexec.NewLocal(reg),
		cfg:      cfg,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

func newStore(cfg *Config) (artifact.Store, error) {
	switch cfg.ArtifactStore {
	case "", "memory":
		return artifact.NewMemory(), nil
	case "s3":
		return artifact.NewObjectStore(artifact.ObjectStoreConfig{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: os.Getenv("CONVEYOR_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("CONVEYOR_S3_SECRET_KEY"),
			UseTLS:    cfg.S3UseTLS,
		})
	default:
		return nil, fmt.Errorf("unknown artifact store %q", cfg.ArtifactStore)
	}
}
