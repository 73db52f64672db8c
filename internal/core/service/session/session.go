package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ryu-qqq/FileFlow-sub007/internal/config"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

type sessionService struct {
	uow     port.UnitOfWork
	storage port.FileStorage
	cfg     config.UploadConfig
	bucket  string
	logger  *slog.Logger
}

// NewSessionService creates a new upload session service
func NewSessionService(uow port.UnitOfWork, storage port.FileStorage, cfg config.UploadConfig, bucket string, logger *slog.Logger) port.SessionService {
	return &sessionService{uow: uow, storage: storage, cfg: cfg, bucket: bucket, logger: logger}
}

// recordEvents turns transition events into outbox rows inside the same
// transaction as the transition itself.
func (s *sessionService) recordEvents(ctx context.Context, uow port.UnitOfWork, events []domain.Event) error {
	for _, event := range events {
		completed, ok := event.(domain.UploadCompleted)
		if !ok {
			continue
		}
		record, err := domain.NewQueueOutbox(completed.SessionID, s.cfg.CompletedTopic, string(domain.SessionStatusCompleted), 0, completed.At)
		if err != nil {
			return err
		}
		if err := uow.OutboxRepo().Create(ctx, record); err != nil {
			return fmt.Errorf("could not record outbox row: %w", err)
		}
	}
	return nil
}

func (s *sessionService) loadSingleResult(ctx context.Context, uow port.UnitOfWork, record *domain.IdempotencyRecord) (*port.SingleUploadResult, error) {
	session, err := uow.SingleSessionRepo().FindByID(ctx, record.AggregateID)
	if err != nil {
		// the key resolved but not to a single session: it was spent on
		// another operation
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("idempotency key %s belongs to another operation: %w", record.Key, domain.ErrConflict)
		}
		return nil, err
	}
	return &port.SingleUploadResult{
		SessionID:    session.ID,
		Bucket:       session.Bucket,
		StorageKey:   session.StorageKey,
		PresignedURL: session.PresignedURL,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *sessionService) loadMultipartResult(ctx context.Context, uow port.UnitOfWork, record *domain.IdempotencyRecord) (*port.MultipartUploadResult, error) {
	session, err := uow.MultipartSessionRepo().FindByID(ctx, record.AggregateID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("idempotency key %s belongs to another operation: %w", record.Key, domain.ErrConflict)
		}
		return nil, err
	}
	partURLs := make(map[int]string, session.TotalParts)
	for _, part := range session.Parts() {
		partURLs[part.PartNumber] = part.PresignedURL
	}
	return &port.MultipartUploadResult{
		SessionID:  session.ID,
		Bucket:     session.Bucket,
		StorageKey: session.StorageKey,
		UploadID:   session.UploadID,
		PartSize:   session.PartSize,
		TotalParts: session.TotalParts,
		PartURLs:   partURLs,
		ExpiresAt:  session.ExpiresAt,
	}, nil
}

func (s *sessionService) now() time.Time {
	return time.Now()
}
