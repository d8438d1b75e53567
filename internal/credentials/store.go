// Package credentials exposes organization-scoped decrypted secret
// retrieval by opaque credential identifier (spec §2 item 1). The
// encryption scheme itself lives in internal/crypto and is opaque to
// every caller of this package.
package credentials

import (
	"context"
	"fmt"

	"github.com/smilemakc/workflow-engine/internal/crypto"
	"github.com/smilemakc/workflow-engine/internal/domain"
)

// Repository is the read surface this package needs from the relational
// store. The store itself is an external collaborator (spec §1); only an
// in-memory implementation ships with this module (see
// internal/repository/memory.go).
type Repository interface {
	GetCredential(ctx context.Context, id string) (*domain.Credential, error)
	IncrementUsageCount(ctx context.Context, id string)
}

// Store resolves and decrypts credentials, enforcing organization
// ownership on every lookup.
type Store struct {
	repo       Repository
	encryption *crypto.EncryptionService
}

// New builds a Store backed by repo and encryption.
func New(repo Repository, encryption *crypto.EncryptionService) *Store {
	return &Store{repo: repo, encryption: encryption}
}

// GetDecrypted returns the decrypted secret for id, scoped to orgID. A
// credential owned by a different organization is reported as a
// domain.TenancyError, never as a mismatched-but-present value.
func (s *Store) GetDecrypted(ctx context.Context, orgID, id string) (string, error) {
	cred, err := s.repo.GetCredential(ctx, id)
	if err != nil {
		return "", &domain.DecryptionError{CredentialID: id, Cause: err}
	}
	if cred.OrganizationID != orgID {
		return "", &domain.TenancyError{Message: fmt.Sprintf("credential %s is not owned by organization %s", id, orgID)}
	}
	plain, err := s.encryption.DecryptString(cred.EncryptedValue)
	if err != nil {
		return "", &domain.DecryptionError{CredentialID: id, Cause: err}
	}
	s.repo.IncrementUsageCount(ctx, id)
	return plain, nil
}

// GetCredentialKind returns the declared kind of a credential without
// decrypting it, useful for compatibility checks before a decrypt call.
func (s *Store) GetCredentialKind(ctx context.Context, id string) (domain.CredentialKind, error) {
	cred, err := s.repo.GetCredential(ctx, id)
	if err != nil {
		return "", &domain.DecryptionError{CredentialID: id, Cause: err}
	}
	return cred.Kind, nil
}
