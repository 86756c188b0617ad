// Package stepexec defines the step-executor boundary. The engine dispatches
// opaque steps across it and observes only exit status, produced artifacts
// and errors; it never inspects what a step does.
package stepexec

import (
	"context"
	"errors"

	"github.com/vk/conveyorgo/internal/config"
)

// ErrInfrastructure marks failures of the execution substrate itself (the
// executor was unreachable, a process could not be started) as opposed to a
// step that ran and failed. The scheduler retries these with backoff before
// treating them as execution errors.
var ErrInfrastructure = errors.New("infrastructure failure")

// Result is what the engine observes from one step execution.
type Result struct {
	// ExitStatus is zero on success. Any other value fails the job instance.
	ExitStatus int
	// Produced maps declared output artifact names to their payloads.
	Produced map[string][]byte
}

// Executor runs a single step. Implementations report back asynchronously
// from the scheduler's point of view: the call blocks a worker goroutine, and
// the scheduler serializes readiness updates on completion.
type Executor interface {
	Execute(ctx context.Context, step *config.Step, env map[string]string, artifacts map[string][]byte) (*Result, error)
}
