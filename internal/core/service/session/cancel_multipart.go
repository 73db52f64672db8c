package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// CancelMultipart fails an open multipart session and aborts the native
// upload at the provider. Cancelling a terminal session is a no-op.
func (s *sessionService) CancelMultipart(ctx context.Context, sessionID uuid.UUID) error {

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {

		session, err := uow.MultipartSessionRepo().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}

		if !session.Cancel(s.now()) {
			return nil
		}
		if err := uow.MultipartSessionRepo().Update(ctx, session); err != nil {
			return err
		}
		return s.storage.AbortMultipartUpload(ctx, session.Bucket, session.StorageKey, session.UploadID)
	})
	if txErr != nil {
		return fmt.Errorf("could not cancel multipart upload session: %w", txErr)
	}
	return nil
}
