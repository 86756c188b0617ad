package stepexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/ctxlog"
	"github.com/vk/conveyorgo/internal/registry"
)

// Local executes steps in the engine's own process: "uses" steps through the
// action registry, "run" steps as shell commands in a scratch directory where
// consumed artifacts are materialized as files and declared outputs are
// collected from.
type Local struct {
	registry *registry.Registry
	shell    string
}

// NewLocal creates a Local executor dispatching named actions to the given
// registry.
func NewLocal(reg *registry.Registry) *Local {
	return &Local{registry: reg, shell: "sh"}
}

// Execute implements Executor.
func (l *Local) Execute(ctx context.Context, step *config.Step, env map[string]string, artifacts map[string][]byte) (*Result, error) {
	if step.Uses != "" {
		return l.executeAction(ctx, step, env, artifacts)
	}
	return l.executeCommand(ctx, step, env, artifacts)
}

func (l *Local) executeAction(ctx context.Context, step *config.Step, env map[string]string, artifacts map[string][]byte) (*Result, error) {
	fn, ok := l.registry.Action(step.Uses)
	if !ok {
		return nil, fmt.Errorf("step %q uses unknown action %q", step.Name, step.Uses)
	}
	produced, err := fn(ctx, &registry.ActionInput{
		With:      step.With,
		Env:       env,
		Artifacts: artifacts,
	})
	if err != nil {
		return nil, fmt.Errorf("action %q: %w", step.Uses, err)
	}
	return &Result{Produced: produced}, nil
}

func (l *Local) executeCommand(ctx context.Context, step *config.Step, env map[string]string, artifacts map[string][]byte) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	dir, err := os.MkdirTemp("", "conveyor-step-")
	if err != nil {
		return nil, fmt.Errorf("creating step workspace: %w", ErrInfrastructure)
	}
	defer os.RemoveAll(dir)

	for name, data := range artifacts {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			return nil, fmt.Errorf("materializing artifact %q: %w", name, ErrInfrastructure)
		}
	}

	cmd := exec.CommandContext(ctx, l.shell, "-c", step.Run)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logger.Debug("Running command step.", "step", step.Name)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{ExitStatus: exitErr.ExitCode()}, nil
		}
		// Anything short of the command running to completion is the
		// substrate's fault, not the step's.
		return nil, fmt.Errorf("starting command step %q: %v: %w", step.Name, err, ErrInfrastructure)
	}

	produced := make(map[string][]byte, len(step.Produces))
	for _, name := range step.Produces {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("step %q declared output %q but did not produce it: %v", step.Name, name, err)
		}
		produced[name] = data
	}
	return &Result{Produced: produced}, nil
}
