package dag

import (
	"context"

	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/ctxlog"
	"github.com/vk/conveyorgo/internal/event"
	"github.com/vk/conveyorgo/internal/expr"
	"github.com/vk/conveyorgo/internal/matrix"
	"github.com/vk/conveyorgo/internal/run"
)

// Build constructs the validated job-instance graph for one run of the
// pipeline, triggered by the given event.
//
// Conditions reference only the immutable event, so they are evaluated here,
// once per job: a false (or malformed, which warns and counts as false)
// condition pre-marks every instance of the job for skipping. Dependency
// edges are drawn from every instance of a needed job to every instance of
// the needing job. Cycles and unknown condition fields reject the whole
// declaration before anything is dispatched.
func Build(ctx context.Context, p *config.Pipeline, ev event.Event) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	graph := newGraph()
	evalCtx := ev.EvalContext()

	byJob := make(map[string][]*run.Instance, len(p.Jobs))

	for _, job := range p.Jobs {
		if err := expr.CheckFields(job.Condition); err != nil {
			return nil, config.Declarationf("job %q condition: %s", job.Name, err)
		}

		met, err := expr.Evaluate(job.Condition, evalCtx)
		if err != nil {
			logger.Warn("Condition could not be evaluated, job will be skipped.",
				"job", job.Name, "error", err)
			met = false
		}

		instances := matrix.Expand(job)
		for _, inst := range instances {
			inst.ConditionMet = met
			if err != nil {
				inst.ConditionErr = err
			}
			if addErr := graph.add(inst); addErr != nil {
				return nil, config.Declarationf("%s", addErr)
			}
		}
		byJob[job.Name] = instances
		logger.Debug("Job expanded.", "job", job.Name, "instances", len(instances), "condition_met", met)
	}

	for _, job := range p.Jobs {
		for _, need := range job.Needs {
			producers, ok := byJob[need]
			if !ok {
				return nil, config.Declarationf("job %q needs unknown job %q", job.Name, need)
			}
			for _, from := range producers {
				for _, to := range byJob[job.Name] {
					if err := graph.addEdge(from.ID, to.ID); err != nil {
						return nil, config.Declarationf("linking %q to %q: %s", need, job.Name, err)
					}
				}
			}
		}
	}

	if err := graph.detectCycles(); err != nil {
		return nil, config.Declarationf("%s", err)
	}

	for _, inst := range graph.Instances() {
		inst.SetPendingDeps(int32(len(graph.deps[inst.ID])))
	}

	logger.Debug("Graph construction successful.", "instances", graph.Len())
	return graph, nil
}
