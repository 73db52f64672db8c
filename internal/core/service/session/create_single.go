package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// CreateSingle issues a presigned single-shot upload session. Retried requests
// carrying the same idempotency key return the original session untouched.
func (s *sessionService) CreateSingle(ctx context.Context, idempotencyKey, ownerID, fileName, contentType string, sizeBytes int64) (*port.SingleUploadResult, error) {

	if idempotencyKey == "" {
		return nil, fmt.Errorf("%w: idempotency key", domain.ErrMissingField)
	}
	if sizeBytes > s.cfg.SingleUploadMaxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds single upload limit", domain.ErrInvalidFileSize, sizeBytes)
	}

	var result *port.SingleUploadResult

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {

		existing, err := uow.IdempotencyRepo().Find(ctx, idempotencyKey)
		if err != nil {
			return err
		}
		if existing != nil {
			result, err = s.loadSingleResult(ctx, uow, existing)
			return err
		}

		now := s.now()
		session, err := domain.NewSingleUploadSession(ownerID, s.bucket, fileName, contentType, sizeBytes, s.cfg.SessionTTL, now)
		if err != nil {
			return err
		}

		presignedURL, _, err := s.storage.GeneratePresignedURLSimpleUpload(ctx, session.Bucket, session.StorageKey, contentType)
		if err != nil {
			return err
		}
		if err := session.Activate(presignedURL, now); err != nil {
			return err
		}

		if err := uow.SingleSessionRepo().Create(ctx, session); err != nil {
			return err
		}

		record, err := domain.NewIdempotencyRecord(idempotencyKey, session.ID, nil, now)
		if err != nil {
			return err
		}
		if err := uow.IdempotencyRepo().Create(ctx, record); err != nil {
			return err
		}

		result = &port.SingleUploadResult{
			SessionID:    session.ID,
			Bucket:       session.Bucket,
			StorageKey:   session.StorageKey,
			PresignedURL: session.PresignedURL,
			ExpiresAt:    session.ExpiresAt,
		}
		return nil
	})

	// a concurrent duplicate won the key race: its result is the answer
	if errors.Is(txErr, domain.ErrConflict) {
		return s.replaySingle(ctx, idempotencyKey)
	}
	if txErr != nil {
		return nil, fmt.Errorf("could not create single upload session: %w", txErr)
	}
	return result, nil
}

func (s *sessionService) replaySingle(ctx context.Context, idempotencyKey string) (*port.SingleUploadResult, error) {
	record, err := s.uow.IdempotencyRepo().Find(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrSessionNotFound
	}
	return s.loadSingleResult(ctx, s.uow, record)
}
