package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// CreateMultipart starts a native multipart upload and issues one presigned
// URL per part. The part ledger is materialized eagerly: one placeholder per
// declared part number, filled in as the client reports uploads.
func (s *sessionService) CreateMultipart(ctx context.Context, idempotencyKey, ownerID, fileName, contentType string, sizeBytes, partSize int64) (*port.MultipartUploadResult, error) {

	if idempotencyKey == "" {
		return nil, fmt.Errorf("%w: idempotency key", domain.ErrMissingField)
	}
	if partSize == 0 {
		partSize = s.cfg.DefaultPartSize
	}

	var result *port.MultipartUploadResult

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {

		existing, err := uow.IdempotencyRepo().Find(ctx, idempotencyKey)
		if err != nil {
			return err
		}
		if existing != nil {
			result, err = s.loadMultipartResult(ctx, uow, existing)
			return err
		}

		now := s.now()
		session, err := domain.NewMultipartUploadSession(ownerID, s.bucket, fileName, contentType, sizeBytes, partSize, s.cfg.SessionTTL, now)
		if err != nil {
			return err
		}

		uploadID, err := s.storage.InitMultipartUpload(ctx, session.Bucket, session.StorageKey, contentType)
		if err != nil {
			return err
		}

		partURLs := make(map[int]string, session.TotalParts)
		for n := 1; n <= session.TotalParts; n++ {
			partURL, presignErr := s.storage.GeneratePresignedURLForPart(ctx, session.Bucket, session.StorageKey, uploadID, n)
			if presignErr != nil {
				return presignErr
			}
			partURLs[n] = partURL
		}

		if err := session.Activate(uploadID, partURLs, now); err != nil {
			return err
		}

		if err := uow.MultipartSessionRepo().Create(ctx, session); err != nil {
			return err
		}

		record, err := domain.NewIdempotencyRecord(idempotencyKey, session.ID, nil, now)
		if err != nil {
			return err
		}
		if err := uow.IdempotencyRepo().Create(ctx, record); err != nil {
			return err
		}

		result = &port.MultipartUploadResult{
			SessionID:  session.ID,
			Bucket:     session.Bucket,
			StorageKey: session.StorageKey,
			UploadID:   session.UploadID,
			PartSize:   session.PartSize,
			TotalParts: session.TotalParts,
			PartURLs:   partURLs,
			ExpiresAt:  session.ExpiresAt,
		}
		return nil
	})

	if errors.Is(txErr, domain.ErrConflict) {
		return s.replayMultipart(ctx, idempotencyKey)
	}
	if txErr != nil {
		return nil, fmt.Errorf("could not create multipart upload session: %w", txErr)
	}
	return result, nil
}

func (s *sessionService) replayMultipart(ctx context.Context, idempotencyKey string) (*port.MultipartUploadResult, error) {
	record, err := s.uow.IdempotencyRepo().Find(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrSessionNotFound
	}
	return s.loadMultipartResult(ctx, s.uow, record)
}
