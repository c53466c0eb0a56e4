package domain

import (
	"context"

	"github.com/google/uuid"
)

// StorePort is the persistence surface the crawl pipeline reconciles
// against. Update callers are expected to have checked ManualLock already
type StorePort interface {
	ListAll(ctx context.Context) ([]Program, error)
	Create(ctx context.Context, p NewProgram) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, u Update) error
}
