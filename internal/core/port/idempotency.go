package port

import (
	"context"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// IdempotencyRepository is an interface to interact with idempotency key storage
type IdempotencyRepository interface {
	// Find resolves a caller-supplied key to the originally created aggregate.
	// Absence is reported as (nil, nil).
	Find(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
	// Create records a key inside the same transaction that creates the
	// aggregate it points at. A concurrent duplicate fails with
	// domain.ErrConflict via the storage-level uniqueness constraint.
	Create(ctx context.Context, record *domain.IdempotencyRecord) error
}
