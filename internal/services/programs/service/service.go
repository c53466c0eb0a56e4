// Package service exposes the programs store to the rest of the app
package service

import (
	"context"

	"github.com/google/uuid"

	"bangcheong/internal/services/programs/domain"
	"bangcheong/internal/services/programs/repo"
)

// Service is the public programs port
type Service interface {
	domain.StorePort
}

// Svc implements the port over the repo
type Svc struct {
	repo repo.Repo
}

// New constructs the service
func New(r repo.Repo) *Svc {
	if r == nil {
		panic("programs.Service requires a non nil Repo")
	}
	return &Svc{repo: r}
}

// ListAll returns the full program snapshot in deterministic order
func (s *Svc) ListAll(ctx context.Context) ([]domain.Program, error) {
	return s.repo.ListAll(ctx)
}

// Create inserts a first sighting
func (s *Svc) Create(ctx context.Context, p domain.NewProgram) (uuid.UUID, error) {
	return s.repo.Create(ctx, p)
}

// Update applies a partial mutation to an unlocked row. The lock check
// happens upstream against the reconcile snapshot
func (s *Svc) Update(ctx context.Context, id uuid.UUID, u domain.Update) error {
	return s.repo.Update(ctx, id, u)
}
