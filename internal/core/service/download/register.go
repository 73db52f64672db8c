package download

import (
	"context"
	"errors"
	"fmt"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// Register creates a PENDING download task together with the queue outbox row
// announcing it, in one transaction. Retried requests with the same
// idempotency key return the original task and create nothing new.
func (d *downloadService) Register(ctx context.Context, idempotencyKey, sourceURL string, access domain.AccessLevel, webhookURL *string) (*domain.ExternalDownloadTask, error) {

	if idempotencyKey == "" {
		return nil, fmt.Errorf("%w: idempotency key", domain.ErrMissingField)
	}

	var task *domain.ExternalDownloadTask

	txErr := d.uow.Execute(ctx, func(uow port.UnitOfWork) error {

		existing, err := uow.IdempotencyRepo().Find(ctx, idempotencyKey)
		if err != nil {
			return err
		}
		if existing != nil {
			task, err = d.loadExistingTask(ctx, uow, existing)
			return err
		}

		now := d.now()
		created, err := domain.NewExternalDownloadTask(sourceURL, d.bucket, access, webhookURL, d.cfg.MaxRetries, now)
		if err != nil {
			return err
		}
		if err := uow.DownloadTaskRepo().Create(ctx, created); err != nil {
			return err
		}

		outbox, err := domain.NewQueueOutbox(created.ID, d.cfg.DispatchTopic, string(created.Status), 0, now)
		if err != nil {
			return err
		}
		if err := uow.OutboxRepo().Create(ctx, outbox); err != nil {
			return err
		}

		record, err := domain.NewIdempotencyRecord(idempotencyKey, created.ID, &outbox.ID, now)
		if err != nil {
			return err
		}
		if err := uow.IdempotencyRepo().Create(ctx, record); err != nil {
			return err
		}

		task = created
		return nil
	})

	// a concurrent duplicate won the key race: its task is the answer
	if errors.Is(txErr, domain.ErrConflict) {
		return d.replay(ctx, idempotencyKey)
	}
	if txErr != nil {
		return nil, fmt.Errorf("could not register download task: %w", txErr)
	}
	return task, nil
}

func (d *downloadService) replay(ctx context.Context, idempotencyKey string) (*domain.ExternalDownloadTask, error) {
	record, err := d.uow.IdempotencyRepo().Find(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrTaskNotFound
	}
	return d.loadExistingTask(ctx, d.uow, record)
}

func (d *downloadService) loadExistingTask(ctx context.Context, uow port.UnitOfWork, record *domain.IdempotencyRecord) (*domain.ExternalDownloadTask, error) {
	task, err := uow.DownloadTaskRepo().FindByID(ctx, record.AggregateID)
	if err != nil {
		// the key resolved but not to a download task: it was spent on
		// another operation
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, fmt.Errorf("idempotency key %s belongs to another operation: %w", record.Key, domain.ErrConflict)
		}
		return nil, err
	}
	return task, nil
}
