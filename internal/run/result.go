package run

import (
	"fmt"
	"time"

	"github.com/vk/conveyorgo/internal/artifact"
)

// Status is the aggregated outcome of a pipeline run.
type Status int

const (
	// StatusNoOp means no instance ran: everything was skipped or filtered
	// out.
	StatusNoOp Status = iota
	// StatusSucceeded means at least one instance ran and nothing failed.
	StatusSucceeded
	// StatusFailed means a reachable, non-skipped instance failed (or the run
	// was force-finalized after the cancellation grace timeout).
	StatusFailed
	// StatusCancelled means the run was cancelled and its executors wound
	// down within the grace timeout.
	StatusCancelled
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusNoOp:
		return "noop"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// InstanceResult is the per-instance slice of a run result.
type InstanceResult struct {
	ID        string
	Job       string
	Selection map[string]string
	State     State
	StartedAt time.Time
	EndedAt   time.Time
	Err       error
}

// Result is the user-visible outcome of one pipeline run.
type Result struct {
	RunID     string
	Status    Status
	Instances []InstanceResult
	Artifacts []artifact.Ref
}

// SummarizeOptions carries the scheduler's view of how the run ended.
type SummarizeOptions struct {
	Cancelled     bool
	GraceExceeded bool
}

// Summarize folds the terminal instance states into a Result. Instance order
// follows the given slice, which the graph keeps in declaration order.
func Summarize(runID string, instances []*Instance, refs []artifact.Ref, opts SummarizeOptions) *Result {
	res := &Result{
		RunID:     runID,
		Instances: make([]InstanceResult, 0, len(instances)),
		Artifacts: refs,
	}

	anyFailed := false
	anyRan := false
	for _, inst := range instances {
		st := inst.State()
		switch st {
		case Failed:
			anyFailed = true
		case Succeeded:
			anyRan = true
		}
		res.Instances = append(res.Instances, InstanceResult{
			ID:        inst.ID,
			Job:       inst.Job.Name,
			Selection: inst.Selection,
			State:     st,
			StartedAt: inst.StartedAt,
			EndedAt:   inst.EndedAt,
			Err:       inst.Err,
		})
	}

	switch {
	case opts.GraceExceeded:
		res.Status = StatusFailed
	case opts.Cancelled:
		res.Status = StatusCancelled
	case anyFailed:
		res.Status = StatusFailed
	case anyRan:
		res.Status = StatusSucceeded
	default:
		res.Status = StatusNoOp
	}
	return res
}
