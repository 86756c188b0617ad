// Package registry holds the named step actions a pipeline may invoke with
// "uses". Actions are opaque to the engine: it hands them parameters, an
// environment bag and the step's consumed artifacts, and observes only the
// produced artifacts and an error.
package registry

import (
	"context"
	"fmt"
)

// ActionInput is everything an action receives for one invocation.
type ActionInput struct {
	// With holds the step's declared parameters, uninterpreted by the engine.
	With map[string]string
	// Env is the merged job/step environment, including secret bindings. The
	// engine never branches on these values.
	Env map[string]string
	// Artifacts maps the step's consumed artifact names to their payloads.
	Artifacts map[string][]byte
}

// ActionFunc is the handler for one named action. The returned map is the
// produced-artifact manifest.
type ActionFunc func(ctx context.Context, in *ActionInput) (map[string][]byte, error)

// Module is the interface built-in action packages implement to register
// themselves.
type Module interface {
	Register(r *Registry)
}

// Registry maps action names to handlers for a single engine instance.
type Registry struct {
	actions map[string]ActionFunc
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{actions: make(map[string]ActionFunc)}
}

// RegisterAction adds a handler under the given name. Re-registering a name
// is a programmer error and panics, matching how misconfigured wiring is
// surfaced at startup rather than mid-run.
func (r *Registry) RegisterAction(name string, fn ActionFunc) {
	if name == "" || fn == nil {
		panic(fmt.Sprintf("registry: invalid action registration %q", name))
	}
	if _, dup := r.actions[name]; dup {
		panic(fmt.Sprintf("registry: action %q registered twice", name))
	}
	r.actions[name] = fn
}

// Action looks up a handler by name.
func (r *Registry) Action(name string) (ActionFunc, bool) {
	fn, ok := r.actions[name]
	return fn, ok
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.actions)
}
