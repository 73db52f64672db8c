package session

import (
	"context"
	"fmt"
	"time"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// ExpireSessions sweeps sessions past their expiry into EXPIRED, aborting the
// native upload of expired multipart sessions. Returns how many sessions
// changed state. Meant to run as a recurring job.
func (s *sessionService) ExpireSessions(ctx context.Context, now time.Time) (int, error) {

	expired := 0

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {

		singles, err := uow.SingleSessionRepo().FindAllExpired(ctx, now, s.cfg.ExpireBatchSize)
		if err != nil {
			return err
		}
		for i := range singles {
			session := &singles[i]
			if !session.Expire(now) {
				continue
			}
			if err := uow.SingleSessionRepo().Update(ctx, session); err != nil {
				return err
			}
			expired++
		}

		multiparts, err := uow.MultipartSessionRepo().FindAllExpired(ctx, now, s.cfg.ExpireBatchSize)
		if err != nil {
			return err
		}
		for i := range multiparts {
			session := &multiparts[i]
			if !session.Expire(now) {
				continue
			}
			if err := uow.MultipartSessionRepo().Update(ctx, session); err != nil {
				return err
			}
			if abortErr := s.storage.AbortMultipartUpload(ctx, session.Bucket, session.StorageKey, session.UploadID); abortErr != nil {
				// the provider reaps stale uploads on its own; the session state is what matters
				s.logger.Warn("failed to abort expired multipart upload",
					"session_id", session.ID,
					"upload_id", session.UploadID,
					"error", abortErr,
				)
			}
			expired++
		}

		return nil
	})
	if txErr != nil {
		return 0, fmt.Errorf("could not expire sessions: %w", txErr)
	}
	return expired, nil
}
