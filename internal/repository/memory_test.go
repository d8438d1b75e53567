package repository

import (
	"context"
	"testing"

	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetWorkflow_ScopedByOrg(t *testing.T) {
	repo := NewMemory()
	repo.PutWorkflow(&domain.Workflow{ID: "wf1", OrganizationID: "org-1"})

	got, err := repo.GetWorkflow(context.Background(), "org-1", "wf1")
	require.NoError(t, err)
	assert.Equal(t, "wf1", got.ID)

	_, err = repo.GetWorkflow(context.Background(), "org-2", "wf1")
	assert.Error(t, err, "workflow must be invisible from a different organization")
}

func TestMemory_GetWorkflow_NotFound(t *testing.T) {
	repo := NewMemory()
	_, err := repo.GetWorkflow(context.Background(), "org-1", "missing")
	assert.Error(t, err)
}

func TestMemory_GetCredential_NotFound(t *testing.T) {
	repo := NewMemory()
	_, err := repo.GetCredential(context.Background(), "missing")
	assert.Error(t, err)
}

func TestMemory_IncrementUsageCount(t *testing.T) {
	repo := NewMemory()
	repo.PutCredential(&domain.Credential{ID: "cred-1", OrganizationID: "org-1"})

	assert.EqualValues(t, 0, repo.UsageCount("cred-1"))
	repo.IncrementUsageCount(context.Background(), "cred-1")
	repo.IncrementUsageCount(context.Background(), "cred-1")
	assert.EqualValues(t, 2, repo.UsageCount("cred-1"))
}

func TestMemory_IncrementUsageCount_UnknownIDIsNoOp(t *testing.T) {
	repo := NewMemory()
	assert.NotPanics(t, func() {
		repo.IncrementUsageCount(context.Background(), "missing")
	})
	assert.EqualValues(t, 0, repo.UsageCount("missing"))
}
