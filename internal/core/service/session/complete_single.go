package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// CompleteSingle records the client-reported ETag and finalizes the session.
// The completion announcement lands in the outbox within the same transaction.
func (s *sessionService) CompleteSingle(ctx context.Context, sessionID uuid.UUID, etag string) (*domain.SingleUploadSession, error) {

	var completed *domain.SingleUploadSession

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {

		session, err := uow.SingleSessionRepo().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}

		events, err := session.Complete(etag, s.now())
		if err != nil {
			return err
		}

		if err := uow.SingleSessionRepo().Update(ctx, session); err != nil {
			return err
		}
		if err := s.recordEvents(ctx, uow, events); err != nil {
			return err
		}

		completed = session
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("could not complete single upload session: %w", txErr)
	}
	return completed, nil
}
