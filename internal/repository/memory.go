package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/smilemakc/workflow-engine/internal/domain"
)

// Memory is an in-memory WorkflowRepository/CredentialRepository, useful
// for tests and for the cmd/engine wiring example. It is not a substitute
// for the relational store the spec places out of scope.
type Memory struct {
	mu          sync.RWMutex
	workflows   map[string]*domain.Workflow
	credentials map[string]*domain.Credential
	usageCounts map[string]*int64
}

// NewMemory builds an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		workflows:   make(map[string]*domain.Workflow),
		credentials: make(map[string]*domain.Credential),
		usageCounts: make(map[string]*int64),
	}
}

// PutWorkflow registers a workflow for later lookup.
func (m *Memory) PutWorkflow(w *domain.Workflow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflows[w.ID] = w
}

// PutCredential registers a credential for later lookup.
func (m *Memory) PutCredential(c *domain.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentials[c.ID] = c
	m.usageCounts[c.ID] = new(int64)
}

func (m *Memory) GetWorkflow(_ context.Context, orgID, workflowID string) (*domain.Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workflows[workflowID]
	if !ok {
		return nil, fmt.Errorf("workflow %s not found", workflowID)
	}
	if w.OrganizationID != orgID {
		return nil, fmt.Errorf("workflow %s not found", workflowID)
	}
	return w, nil
}

func (m *Memory) GetCredential(_ context.Context, id string) (*domain.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.credentials[id]
	if !ok {
		return nil, fmt.Errorf("credential %s not found", id)
	}
	return c, nil
}

func (m *Memory) IncrementUsageCount(_ context.Context, id string) {
	m.mu.RLock()
	counter, ok := m.usageCounts[id]
	m.mu.RUnlock()
	if !ok {
		return
	}
	atomic.AddInt64(counter, 1)
}

// UsageCount returns the number of times a credential has been decrypted,
// for assertions in tests.
func (m *Memory) UsageCount(id string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counter, ok := m.usageCounts[id]
	if !ok {
		return 0
	}
	return atomic.LoadInt64(counter)
}
