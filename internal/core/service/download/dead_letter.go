package download

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// HandleDeadLetter applies the queue's terminal delivery-failure signal: the
// task is forced to FAILED with the fallback asset attached, bypassing the
// normal retry count. Tasks already terminal are left alone.
func (d *downloadService) HandleDeadLetter(ctx context.Context, taskID uuid.UUID, reason string) error {

	txErr := d.uow.Execute(ctx, func(uow port.UnitOfWork) error {

		task, err := uow.DownloadTaskRepo().FindByID(ctx, taskID)
		if err != nil {
			return err
		}

		fallback := d.cfg.FallbackAssetKey
		handled, events := task.MarkAsFailedFromDeadLetter(reason, &fallback, d.now())
		if !handled {
			d.logger.Info("dead letter for already handled task", "task_id", taskID)
			return nil
		}

		if err := uow.DownloadTaskRepo().Update(ctx, task); err != nil {
			return err
		}
		return d.recordWebhookOutbox(ctx, uow, task, events)
	})
	if txErr != nil {
		return fmt.Errorf("could not apply dead letter: %w", txErr)
	}
	return nil
}
