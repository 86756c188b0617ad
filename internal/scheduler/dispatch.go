package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/buildkite/roko"

	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/ctxlog"
	"github.com/vk/conveyorgo/internal/run"
	"github.com/vk/conveyorgo/internal/stepexec"
)

// runInstance executes the instance's steps in order, bridging them to the
// artifact store: consumed artifacts are fetched before a step runs, produced
// ones are published right after it succeeds so the next step (and downstream
// instances) can read them.
func (s *Scheduler) runInstance(ctx context.Context, n *run.Instance) error {
	logger := ctxlog.FromContext(ctx).With("instance", n.ID)

	env := s.instanceEnv(n)
	// working caches this instance's own artifact traffic so sequential
	// steps don't round-trip through the store.
	working := make(map[string][]byte)

	for _, step := range n.Job.Steps {
		stepArtifacts := make(map[string][]byte, len(step.Consumes))
		for _, name := range step.Consumes {
			if data, ok := working[name]; ok {
				stepArtifacts[name] = data
				continue
			}
			data, err := s.fetchArtifact(ctx, name)
			if err != nil {
				return &ExecutionError{Step: step.Name, Err: err}
			}
			stepArtifacts[name] = data
			working[name] = data
		}

		stepEnv := env
		if len(step.Env) > 0 {
			stepEnv = make(map[string]string, len(env)+len(step.Env))
			for k, v := range env {
				stepEnv[k] = v
			}
			for k, v := range step.Env {
				stepEnv[k] = v
			}
		}

		res, err := s.executeWithRetry(ctx, step, stepEnv, stepArtifacts)
		if err != nil {
			return &ExecutionError{Step: step.Name, Err: err}
		}
		if res.ExitStatus != 0 {
			return &ExecutionError{Step: step.Name, Err: fmt.Errorf("exit status %d", res.ExitStatus)}
		}

		names := make([]string, 0, len(res.Produced))
		for name := range res.Produced {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			data := res.Produced[name]
			ref, err := s.store.Put(ctx, s.runID, name, n.ID, bytes.NewReader(data))
			if err != nil {
				return &ExecutionError{Step: step.Name, Err: err}
			}
			working[name] = data
			logger.Debug("Artifact stored.", "artifact", name, "size", ref.Size)
		}
	}
	return nil
}

// executeWithRetry dispatches one step, retrying infrastructure failures
// with constant backoff up to the configured attempt bound. Step-level
// failures break out immediately; only the substrate gets second chances.
func (s *Scheduler) executeWithRetry(ctx context.Context, step *config.Step, env map[string]string, artifacts map[string][]byte) (*stepexec.Result, error) {
	var res *stepexec.Result
	err := roko.NewRetrier(
		roko.WithMaxAttempts(s.retryAttempts),
		roko.WithStrategy(roko.Constant(s.retryInterval)),
	).DoWithContext(ctx, func(r *roko.Retrier) error {
		var execErr error
		res, execErr = s.exec.Execute(ctx, step, env, artifacts)
		if execErr != nil && !errors.Is(execErr, stepexec.ErrInfrastructure) {
			r.Break()
		}
		return execErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Scheduler) fetchArtifact(ctx context.Context, name string) ([]byte, error) {
	rc, err := s.store.Get(ctx, s.runID, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading artifact %q: %w", name, err)
	}
	return data, nil
}

// instanceEnv merges the job environment, the matrix selection (as
// MATRIX_<AXIS> variables) and the opaque secret bindings. Secret values are
// passed straight through from the process environment; the engine never
// branches on them.
func (s *Scheduler) instanceEnv(n *run.Instance) map[string]string {
	env := make(map[string]string, len(n.Job.Env)+len(n.Selection)+len(n.Job.Secrets))
	for k, v := range n.Job.Env {
		env[k] = v
	}
	for _, ax := range n.Job.Matrix {
		if v, ok := n.Selection[ax.Name]; ok {
			env["MATRIX_"+strings.ToUpper(ax.Name)] = v
		}
	}
	for _, name := range n.Job.Secrets {
		if v, ok := os.LookupEnv(name); ok {
			env[name] = v
		}
	}
	return env
}
