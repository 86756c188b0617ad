// Package scheduler dispatches a run's job-instance graph to step executors.
//
// Dispatch is Kahn-style with dynamic readiness recomputation: each instance
// carries an atomic unmet-dependency counter, workers pull ready instances
// from a channel, and every terminal transition (success, failure, skip) is
// what unlocks or skips dependents. Outcomes are only known at runtime, so no
// static topological order is precomputed.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vk/conveyorgo/internal/artifact"
	"github.com/vk/conveyorgo/internal/ctxlog"
	"github.com/vk/conveyorgo/internal/dag"
	"github.com/vk/conveyorgo/internal/run"
	"github.com/vk/conveyorgo/internal/stepexec"
)

// ExecutionError is the failure of one job instance: a step exited non-zero,
// errored, or tripped over the artifact store (conflict, not found). It
// affects the owning instance and its transitive dependents only.
type ExecutionError struct {
	Step string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("step %q: %v", e.Step, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// errConditionFalse is the recorded skip cause for gated-out instances.
var errConditionFalse = errors.New("condition evaluated false")

const (
	defaultGraceTimeout  = 10 * time.Second
	defaultRetryAttempts = 3
	defaultRetryInterval = 500 * time.Millisecond
)

// Scheduler executes one pipeline run over a built graph. It is single-use:
// create one per run.
type Scheduler struct {
	graph   *dag.Graph
	exec    stepexec.Executor
	store   artifact.Store
	workers int

	grace         time.Duration
	retryAttempts int
	retryInterval time.Duration

	runID string
	wg    sync.WaitGroup
	quit  chan struct{}
}

// Option tweaks scheduler behavior.
type Option func(*Scheduler)

// WithGraceTimeout bounds how long a cancelled run waits for running step
// executors before force-finalizing. Non-positive values keep the default.
func WithGraceTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.grace = d
		}
	}
}

// WithRetry configures the bounded retry applied to infrastructure errors.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(s *Scheduler) {
		s.retryAttempts = attempts
		s.retryInterval = interval
	}
}

// New creates a scheduler for one run of the given graph. workers bounds the
// number of concurrently running instances, modeling finite runner capacity.
func New(graph *dag.Graph, exec stepexec.Executor, store artifact.Store, workers int, opts ...Option) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	s := &Scheduler{
		graph:         graph,
		exec:          exec,
		store:         store,
		workers:       workers,
		grace:         defaultGraceTimeout,
		retryAttempts: defaultRetryAttempts,
		retryInterval: defaultRetryInterval,
		quit:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the graph to completion (or cancellation) and returns the
// aggregated result. A dependency's terminal state is always observed before
// its dependent is dispatched; sibling instances have no ordering guarantee.
func (s *Scheduler) Run(ctx context.Context, runID string) (*run.Result, error) {
	logger := ctxlog.FromContext(ctx)
	s.runID = runID

	instances := s.graph.Instances()
	// Every instance is enqueued at most once: either initially (no
	// dependencies) or when its unmet counter hits zero. The buffer therefore
	// never fills and sends never block, which lets workers and the
	// cancellation sweep publish readiness without coordinating. The channel
	// is never closed; workers are stopped through quit instead, so a send
	// racing shutdown lands in the buffer rather than panicking.
	ready := make(chan *run.Instance, len(instances))
	s.wg.Add(len(instances))

	for i := 0; i < s.workers; i++ {
		go s.worker(ctx, ready, i)
	}

	for _, inst := range instances {
		if inst.State() == run.Pending {
			ready <- inst
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var opts run.SummarizeOptions
	select {
	case <-done:
	case <-ctx.Done():
		opts.Cancelled = true
		logger.Info("Cancellation requested, skipping pending instances.", "run_id", runID)
		for _, inst := range instances {
			if inst.Skip(ctx.Err(), &s.wg) {
				s.finalizeDependents(inst, ready)
			}
		}
		// Running instances get their contexts cancelled by the caller;
		// wait for their terminal callbacks up to the grace timeout.
		select {
		case <-done:
		case <-time.After(s.grace):
			opts.GraceExceeded = true
			logger.Error("Grace timeout exceeded, force-finalizing run.", "run_id", runID)
		}
	}
	close(s.quit)

	// The manifest is read with a fresh context so a cancelled run still
	// reports what it produced.
	refs, err := s.store.Manifest(context.WithoutCancel(ctx), runID)
	if err != nil {
		logger.Warn("Could not read artifact manifest.", "run_id", runID, "error", err)
	}

	return run.Summarize(runID, instances, refs, opts), nil
}
