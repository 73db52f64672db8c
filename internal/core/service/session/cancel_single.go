package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// CancelSingle fails an open session. Cancelling a terminal session is a no-op.
func (s *sessionService) CancelSingle(ctx context.Context, sessionID uuid.UUID) error {

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {

		session, err := uow.SingleSessionRepo().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}

		if !session.Cancel(s.now()) {
			return nil
		}
		return uow.SingleSessionRepo().Update(ctx, session)
	})
	if txErr != nil {
		return fmt.Errorf("could not cancel single upload session: %w", txErr)
	}
	return nil
}
