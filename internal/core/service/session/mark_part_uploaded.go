package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// MarkPartUploaded records upload evidence for one part of a multipart
// session. Re-reporting a part overwrites the previous evidence.
func (s *sessionService) MarkPartUploaded(ctx context.Context, sessionID uuid.UUID, partNumber int, etag string, sizeBytes int64) (*domain.CompletedPart, error) {

	var recorded *domain.CompletedPart

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {

		session, err := uow.MultipartSessionRepo().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}

		part, err := session.MarkPartUploaded(partNumber, etag, sizeBytes, s.now())
		if err != nil {
			return err
		}

		if err := uow.MultipartSessionRepo().UpsertPart(ctx, *part); err != nil {
			return err
		}
		if err := uow.MultipartSessionRepo().Update(ctx, session); err != nil {
			return err
		}

		recorded = part
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("could not record uploaded part: %w", txErr)
	}
	return recorded, nil
}
