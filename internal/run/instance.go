// Package run holds the mutable execution state of a pipeline run: job
// instances with their state machine, and the aggregated run result.
package run

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/conveyorgo/internal/config"
)

// State is the execution state of a job instance.
type State int32

const (
	// Pending means the instance is ready for dispatch.
	Pending State = iota
	// Blocked means at least one dependency is not yet terminal-successful.
	Blocked
	// Running means a worker is executing the instance's steps.
	Running
	// Succeeded means all steps completed with exit status zero.
	Succeeded
	// Failed means a step failed or errored.
	Failed
	// Skipped means the instance never ran: condition false, dependency not
	// successful, or the run was cancelled.
	Skipped
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Blocked:
		return "blocked"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed || s == Skipped
}

// Instance is one concretely schedulable execution of a job template, tagged
// with its matrix selection. State transitions are atomic so the scheduler's
// readiness recomputation never races a concurrent completion.
type Instance struct {
	// ID is the deterministic identifier, e.g. "job.test[os=linux,version=3.11]".
	ID string
	// Job is the template this instance was expanded from.
	Job *config.Job
	// Selection maps axis name to the chosen value. Empty for non-matrix jobs.
	Selection map[string]string

	// ConditionMet is false when the job's gating condition evaluated false
	// (or failed to evaluate); such instances are skipped without running.
	ConditionMet bool
	// ConditionErr carries the evaluation warning, if any, into the result.
	ConditionErr error

	// Err is the terminal error for Failed and Skipped instances.
	Err error

	StartedAt time.Time
	EndedAt   time.Time

	state       atomic.Int32
	pendingDeps atomic.Int32
	finishOnce  sync.Once
}

// NewInstance creates a Pending instance for the given selection. The ID
// lists the selection in the template's axis declaration order, so repeated
// expansions produce identical identifiers.
func NewInstance(job *config.Job, selection map[string]string) *Instance {
	inst := &Instance{
		ID:           instanceID(job, selection),
		Job:          job,
		Selection:    selection,
		ConditionMet: true,
	}
	return inst
}

func instanceID(job *config.Job, selection map[string]string) string {
	if len(selection) == 0 {
		return "job." + job.Name
	}
	parts := make([]string, 0, len(selection))
	for _, ax := range job.Matrix {
		if v, ok := selection[ax.Name]; ok {
			parts = append(parts, ax.Name+"="+v)
		}
	}
	return fmt.Sprintf("job.%s[%s]", job.Name, strings.Join(parts, ","))
}

// State atomically reads the current state.
func (i *Instance) State() State {
	return State(i.state.Load())
}

// SetPendingDeps initializes the unmet-dependency counter. Instances with
// unmet dependencies start Blocked.
func (i *Instance) SetPendingDeps(n int32) {
	i.pendingDeps.Store(n)
	if n > 0 {
		i.state.Store(int32(Blocked))
	}
}

// DecPendingDeps atomically records one dependency reaching a terminal state
// and returns the number still outstanding.
func (i *Instance) DecPendingDeps() int32 {
	return i.pendingDeps.Add(-1)
}

// TryStart attempts the transition to Running. It fails if the instance was
// already skipped or started by someone else, which makes dispatch and
// cancellation race-free.
func (i *Instance) TryStart() bool {
	if i.state.CompareAndSwap(int32(Pending), int32(Running)) ||
		i.state.CompareAndSwap(int32(Blocked), int32(Running)) {
		i.StartedAt = time.Now()
		return true
	}
	return false
}

// Complete records the terminal state of an instance that ran. The WaitGroup
// is released exactly once per instance across Complete and Skip.
func (i *Instance) Complete(s State, err error, wg *sync.WaitGroup) {
	i.EndedAt = time.Now()
	i.Err = err
	i.state.Store(int32(s))
	i.finishOnce.Do(wg.Done)
}

// Skip transitions a not-yet-running instance to Skipped. It returns true if
// this call won the transition, in which case the caller is responsible for
// cascading the skip to dependents.
func (i *Instance) Skip(err error, wg *sync.WaitGroup) bool {
	if i.state.CompareAndSwap(int32(Pending), int32(Skipped)) ||
		i.state.CompareAndSwap(int32(Blocked), int32(Skipped)) {
		i.Err = err
		i.EndedAt = time.Now()
		i.finishOnce.Do(wg.Done)
		return true
	}
	return false
}
