package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// DownloadTaskRepository is an interface to interact with external download task storage
type DownloadTaskRepository interface {
	Create(ctx context.Context, task *domain.ExternalDownloadTask) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ExternalDownloadTask, error)
	// Update persists a mutated task with a compare-and-swap on its version.
	// A stale version fails with domain.ErrConflict.
	Update(ctx context.Context, task *domain.ExternalDownloadTask) error
}
