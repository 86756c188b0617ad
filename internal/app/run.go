package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vk/conveyorgo/internal/ctxlog"
	"github.com/vk/conveyorgo/internal/dag"
	"github.com/vk/conveyorgo/internal/event"
	"github.com/vk/conveyorgo/internal/run"
	"github.com/vk/conveyorgo/internal/scheduler"
)

// Run executes one pipeline run for the given trigger event and returns its
// aggregated result.
func (a *App) Run(ctx context.Context, ev event.Event) (*run.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID, "pipeline", a.model.Pipeline.Name)

	if !triggered(a.model.Pipeline, ev) {
		logger.Info("Event does not match any trigger, nothing to do.",
			"event", ev.Kind.String(), "ref", ev.Ref)
		return &run.Result{RunID: runID, Status: run.StatusNoOp}, nil
	}

	graph, err := dag.Build(ctx, a.model.Pipeline, ev)
	if err != nil {
		return nil, fmt.Errorf("building job graph: %w", err)
	}
	logger.Debug("Job graph built.", "instances", graph.Len())

	if graph.Len() == 0 {
		logger.Info("No job instances to run.")
		return &run.Result{RunID: runID, Status: run.StatusNoOp}, nil
	}

	sched := scheduler.New(graph, a.exec, a.store, a.cfg.Workers,
		scheduler.WithGraceTimeout(a.cfg.GraceTimeout))
	logger.Info("Starting run.", "instances", graph.Len(), "workers", a.cfg.Workers)
	res, err := sched.Run(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("executing run: %w", err)
	}
	logger.Info("Run finished.", "status", res.Status.String())
	return res, nil
}
