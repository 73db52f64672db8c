package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// CompleteMultipart verifies the caller-provided part ETags against the
// ledger, asks the provider to merge the parts, and finalizes the session.
// The returned manifest lists parts ascending by part number regardless of
// the order they were uploaded in.
func (s *sessionService) CompleteMultipart(ctx context.Context, sessionID uuid.UUID, parts []domain.PartETag) (*port.MultipartManifest, error) {

	var manifest *port.MultipartManifest

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {

		session, err := uow.MultipartSessionRepo().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}

		if err := session.VerifyParts(parts); err != nil {
			return err
		}

		ledger := session.Parts()
		completeParts := make([]port.CompletePart, 0, len(ledger))
		for _, part := range ledger {
			completeParts = append(completeParts, port.CompletePart{
				PartNumber: part.PartNumber,
				ETag:       part.ETag,
			})
		}

		mergedETag, err := s.storage.CompleteMultipartUpload(ctx, session.Bucket, session.StorageKey, session.UploadID, completeParts)
		if err != nil {
			return err
		}

		events, err := session.Complete(mergedETag, s.now())
		if err != nil {
			return err
		}

		if err := uow.MultipartSessionRepo().Update(ctx, session); err != nil {
			return err
		}
		if err := s.recordEvents(ctx, uow, events); err != nil {
			return err
		}

		manifest = &port.MultipartManifest{
			SessionID:  session.ID,
			Bucket:     session.Bucket,
			StorageKey: session.StorageKey,
			MergedETag: *session.MergedETag,
			PartCount:  session.TotalParts,
			Parts:      session.Parts(),
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("could not complete multipart upload: %w", txErr)
	}
	return manifest, nil
}
