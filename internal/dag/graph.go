// Package dag builds and validates the job-instance dependency graph for one
// pipeline run.
package dag

import (
	"fmt"

	"github.com/vk/conveyorgo/internal/run"
)

// Graph is the dependency graph over job instances. It is immutable once
// Build returns; all mutation during execution happens on the instances
// themselves.
type Graph struct {
	nodes      map[string]*run.Instance
	deps       map[string]map[string]*run.Instance
	dependents map[string]map[string]*run.Instance
	// order preserves creation order: job declaration order, then matrix
	// expansion order within a job.
	order []string
}

func newGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*run.Instance),
		deps:       make(map[string]map[string]*run.Instance),
		dependents: make(map[string]map[string]*run.Instance),
	}
}

func (g *Graph) add(inst *run.Instance) error {
	if _, exists := g.nodes[inst.ID]; exists {
		return fmt.Errorf("duplicate instance %s", inst.ID)
	}
	g.nodes[inst.ID] = inst
	g.deps[inst.ID] = make(map[string]*run.Instance)
	g.dependents[inst.ID] = make(map[string]*run.Instance)
	g.order = append(g.order, inst.ID)
	return nil
}

func (g *Graph) addEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s", fromID)
	}
	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source instance not found: %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination instance not found: %s", toID)
	}
	g.deps[toID][fromID] = from
	g.dependents[fromID][toID] = to
	return nil
}

// Len returns the number of instances.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Instances returns every instance in stable creation order.
func (g *Graph) Instances() []*run.Instance {
	out := make([]*run.Instance, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Dependencies returns the instances the given instance depends on, in
// stable creation order.
func (g *Graph) Dependencies(id string) []*run.Instance {
	return g.ordered(g.deps[id])
}

// Dependents returns the instances depending on the given instance, in
// stable creation order.
func (g *Graph) Dependents(id string) []*run.Instance {
	return g.ordered(g.dependents[id])
}

func (g *Graph) ordered(set map[string]*run.Instance) []*run.Instance {
	if len(set) == 0 {
		return nil
	}
	out := make([]*run.Instance, 0, len(set))
	for _, id := range g.order {
		if inst, ok := set[id]; ok {
			out = append(out, inst)
		}
	}
	return out
}

// detectCycles runs a depth-first search with the classic three node sets:
// permanently visited, on the current recursion stack, and unvisited.
func (g *Graph) detectCycles() error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("cycle detected involving %s", id)
		}
		temporary[id] = true
		for depID := range g.dependents[id] {
			if err := visit(depID); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for _, id := range g.order {
		if !permanent[id] {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
