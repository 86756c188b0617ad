package scheduler

import (
	"context"
	"fmt"

	"github.com/vk/conveyorgo/internal/ctxlog"
	"github.com/vk/conveyorgo/internal/run"
)

// worker is the processing loop for a single concurrency slot.
func (s *Scheduler) worker(ctx context.Context, ready chan *run.Instance, workerID int) {
	logger := ctxlog.FromContext(ctx)

	for {
		var n *run.Instance
		select {
		case <-s.quit:
			return
		case n = <-ready:
		}
		wl := logger.With("workerID", workerID, "instance", n.ID)

		if ctx.Err() != nil {
			if n.Skip(ctx.Err(), &s.wg) {
				s.finalizeDependents(n, ready)
			}
			continue
		}

		if !n.ConditionMet {
			cause := n.ConditionErr
			if cause == nil {
				cause = errConditionFalse
			}
			if n.Skip(cause, &s.wg) {
				wl.Info("Skipping instance, condition not met.")
				s.finalizeDependents(n, ready)
			}
			continue
		}

		// Losing the transition means a concurrent cancellation sweep
		// already skipped this instance.
		if !n.TryStart() {
			continue
		}

		wl.Debug("Dispatching instance.", "runs_on", n.Job.RunsOn)
		if err := s.runInstance(ctx, n); err != nil {
			wl.Error("Instance failed.", "error", err)
			n.Complete(run.Failed, err, &s.wg)
			s.finalizeDependents(n, ready)
			continue
		}

		wl.Debug("Instance succeeded.")
		n.Complete(run.Succeeded, nil, &s.wg)
		s.finalizeDependents(n, ready)
	}
}

// finalizeDependents reacts to the given instance reaching a terminal state.
//
// For a non-successful outcome it first skips every dependent that is not
// declared run_always, recursively, so a dependent can never be dispatched
// between its counter hitting zero and the skip landing. Only then are the
// dependents' unmet counters decremented; whoever reaches zero and is still
// live gets enqueued. Skipped counts as non-success for downstream checks, so
// a dependent of a skipped instance is skipped too.
func (s *Scheduler) finalizeDependents(n *run.Instance, ready chan<- *run.Instance) {
	dependents := s.graph.Dependents(n.ID)

	if n.State() != run.Succeeded {
		for _, d := range dependents {
			if d.Job.RunAlways {
				continue
			}
			cause := fmt.Errorf("dependency %s did not succeed (%s)", n.ID, n.State())
			if d.Skip(cause, &s.wg) {
				s.finalizeDependents(d, ready)
			}
		}
	}

	for _, d := range dependents {
		if d.DecPendingDeps() == 0 && !d.State().Terminal() {
			ready <- d
		}
	}
}
