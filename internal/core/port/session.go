package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// SingleUploadSessionRepository is an interface to interact with single upload session storage
type SingleUploadSessionRepository interface {
	Create(ctx context.Context, session *domain.SingleUploadSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.SingleUploadSession, error)
	// Update persists a mutated session with a compare-and-swap on its version.
	// A stale version fails with domain.ErrConflict.
	Update(ctx context.Context, session *domain.SingleUploadSession) error
	FindAllExpired(ctx context.Context, now time.Time, limit int) ([]domain.SingleUploadSession, error)
}

// MultipartUploadSessionRepository is an interface to interact with multipart session storage.
// The part ledger is persisted alongside the session.
type MultipartUploadSessionRepository interface {
	Create(ctx context.Context, session *domain.MultipartUploadSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.MultipartUploadSession, error)
	Update(ctx context.Context, session *domain.MultipartUploadSession) error
	UpsertPart(ctx context.Context, part domain.CompletedPart) error
	FindAllExpired(ctx context.Context, now time.Time, limit int) ([]domain.MultipartUploadSession, error)
}
