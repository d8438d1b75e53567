// Package repository describes the relational store's read/write surface
// as seen by the engine. The store itself (schema, migrations, a live
// Postgres connection) is an explicit external collaborator (spec §1);
// this package only defines the interfaces the engine consumes, plus an
// in-memory implementation for tests.
package repository

import (
	"context"

	"github.com/smilemakc/workflow-engine/internal/domain"
)

// WorkflowRepository reads workflow graphs by id, scoped by organization.
type WorkflowRepository interface {
	GetWorkflow(ctx context.Context, orgID, workflowID string) (*domain.Workflow, error)
}

// CredentialRepository reads and audits credentials.
type CredentialRepository interface {
	GetCredential(ctx context.Context, id string) (*domain.Credential, error)
	IncrementUsageCount(ctx context.Context, id string)
}
