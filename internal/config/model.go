package config

import "github.com/hashicorp/hcl/v2"

// Model is the unified, format-agnostic representation of a loaded
// declaration file.
type Model struct {
	Pipeline *Pipeline
}

// Pipeline is a full pipeline declaration: when it runs and what it runs.
type Pipeline struct {
	Name     string
	Triggers []*Trigger
	// Jobs preserves declaration order, which fixes the ordering of job
	// instances in results and in dispatch tie-breaking.
	Jobs []*Job
}

// Trigger describes one class of events that starts the pipeline.
type Trigger struct {
	// Events lists the event kinds this trigger accepts ("push", "release",
	// "manual").
	Events []string
	// Refs, when non-empty, restricts the trigger to the listed refs.
	Refs []string
	// TagsOnly restricts the trigger to tag events.
	TagsOnly bool
	// SkipIfMessageContains suppresses the trigger when the commit message
	// contains any of the listed substrings.
	SkipIfMessageContains []string
}

// Job is a job template: a declared unit of work before matrix expansion.
type Job struct {
	Name string
	// RunsOn is an opaque runner label. The engine records it and hands it to
	// step executors; it never interprets it.
	RunsOn string
	// Condition gates the job. A nil condition means the job always runs.
	Condition hcl.Expression
	// Needs lists the names of jobs whose instances must all succeed before
	// any instance of this job is dispatched.
	Needs []string
	// RunAlways lets the job dispatch once its dependencies are terminal,
	// regardless of their outcome. Default is to require success.
	RunAlways bool
	// Matrix holds the ordered axis definitions. Empty means one instance.
	Matrix []*Axis
	// Env is an opaque key-value bag merged into every step's environment.
	Env map[string]string
	// Secrets names environment bindings resolved by the step executor. The
	// engine never reads their values.
	Secrets []string
	Steps   []*Step
}

// Axis is one matrix dimension with its declared value order.
type Axis struct {
	Name   string
	Values []string
}

// Step is one unit inside a job: either an inline command (Run) or a named
// action (Uses), never both.
type Step struct {
	Name string
	// Run is an inline command string executed by the step executor.
	Run string
	// Uses names an opaque registered action.
	Uses string
	// With holds action parameters, passed through uninterpreted.
	With map[string]string
	// Env is merged over the job environment for this step only.
	Env map[string]string
	// Consumes lists artifact names this step requires from the run's store.
	Consumes []string
	// Produces lists artifact names this step is expected to emit.
	Produces []string
}
