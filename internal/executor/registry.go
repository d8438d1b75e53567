package executor

import (
	"fmt"
	"sync"

	"github.com/smilemakc/workflow-engine/internal/domain"
)

// Registry maps node kind to executor, grounded on
// backend/pkg/executor/registry.go's thread-safe Registry.
type Registry struct {
	mu        sync.RWMutex
	executors map[domain.NodeKind]Executor
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[domain.NodeKind]Executor)}
}

// Register associates kind with an executor, replacing any prior entry.
func (r *Registry) Register(kind domain.NodeKind, ex Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[kind] = ex
}

// Get returns the executor for kind, or an error if none is registered.
func (r *Registry) Get(kind domain.NodeKind) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ex, ok := r.executors[kind]
	if !ok {
		return nil, fmt.Errorf("no executor registered for kind %q", kind)
	}
	return ex, nil
}

// Has reports whether kind has a registered executor.
func (r *Registry) Has(kind domain.NodeKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.executors[kind]
	return ok
}
