package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// Memory is the default, in-process Store. It is created fresh for each
// engine and holds every run's artifacts in memory; payload lifetime is the
// store's lifetime, which matches the pipeline-run scoping the engine needs.
type Memory struct {
	mu   sync.Mutex
	runs map[string]*memoryRun
}

type memoryRun struct {
	entries map[string]memoryEntry
	order   []string
}

type memoryEntry struct {
	data []byte
	ref  Ref
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{runs: make(map[string]*memoryRun)}
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, runID, name, producer string, r io.Reader) (Ref, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Ref{}, fmt.Errorf("reading artifact %q payload: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rn, ok := m.runs[runID]
	if !ok {
		rn = &memoryRun{entries: make(map[string]memoryEntry)}
		m.runs[runID] = rn
	}
	if prev, exists := rn.entries[name]; exists {
		return Ref{}, fmt.Errorf("artifact %q in run %s already produced by %s: %w",
			name, runID, prev.ref.Producer, ErrConflict)
	}

	ref := Ref{
		Name:     name,
		Producer: producer,
		Size:     int64(len(data)),
		Location: "memory:" + runID + "/" + name,
	}
	rn.entries[name] = memoryEntry{data: data, ref: ref}
	rn.order = append(rn.order, name)
	return ref, nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, runID, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rn, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("artifact %q in run %s: %w", name, runID, ErrNotFound)
	}
	entry, ok := rn.entries[name]
	if !ok {
		return nil, fmt.Errorf("artifact %q in run %s: %w", name, runID, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(entry.data)), nil
}

// Manifest implements Store. Refs are returned in production order.
func (m *Memory) Manifest(_ context.Context, runID string) ([]Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rn, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}
	refs := make([]Ref, 0, len(rn.order))
	for _, name := range rn.order {
		refs = append(refs, rn.entries[name].ref)
	}
	return refs, nil
}

// Drop releases a finished run's payloads.
func (m *Memory) Drop(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, runID)
}
