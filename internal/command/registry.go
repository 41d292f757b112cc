// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package command

import (
	"slices"
	"sync"

	"github.com/samber/oops"

	"github.com/agorafed/agora/internal/api"
)

// Registry maps operations to handlers.
// It is thread-safe for concurrent access.
type Registry struct {
	entries map[api.Op]Entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[api.Op]Entry),
	}
}

// Register adds an entry. Registering the same op twice is an error.
func (r *Registry) Register(entry Entry) error {
	if entry.Handler == nil {
		return oops.Code("NIL_HANDLER").With("op", entry.Op).Errorf("handler for %s is nil", entry.Op)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[entry.Op]; ok {
		return oops.Code("DUPLICATE_COMMAND").With("op", entry.Op).Errorf("command %s already registered", entry.Op)
	}
	r.entries[entry.Op] = entry
	return nil
}

// Get returns the entry for op.
func (r *Registry) Get(op api.Op) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[op]
	return entry, ok
}

// Missing returns the ops in want that have no entry, in input order.
func (r *Registry) Missing(want []api.Op) []api.Op {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []api.Op
	for _, op := range want {
		if _, ok := r.entries[op]; !ok {
			missing = append(missing, op)
		}
	}
	return missing
}

// Ops returns the registered ops, sorted.
func (r *Registry) Ops() []api.Op {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make([]api.Op, 0, len(r.entries))
	for op := range r.entries {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}
