package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// OutboxRepository is an interface to interact with outbox storage.
// Rows are created by aggregate orchestration and mutated only by the
// dispatch worker; they are never deleted.
type OutboxRepository interface {
	Create(ctx context.Context, record *domain.OutboxRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.OutboxRecord, error)
	// ClaimPending atomically leases up to limit PENDING rows of one kind,
	// oldest first. Rows whose lease is older than leaseExpiry are up for
	// grabs again. Two workers can never claim the same row inside one lease.
	ClaimPending(ctx context.Context, kind domain.OutboxKind, limit int, now, leaseExpiry time.Time) ([]domain.OutboxRecord, error)
	// MarkSent flips a claimed row to SENT; rows already terminal fail with
	// domain.ErrInvalidState so a racing second claimant cannot double-report.
	MarkSent(ctx context.Context, id uuid.UUID, processedAt time.Time) error
	// ReleaseForRetry returns a claimed row to the PENDING pool with its
	// retry count bumped and the attempt's error recorded.
	ReleaseForRetry(ctx context.Context, id uuid.UUID, lastError string) error
	// MarkFailed flips a claimed row to terminal FAILED once retries exhaust.
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string, processedAt time.Time) error
}
