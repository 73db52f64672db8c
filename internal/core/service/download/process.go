package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// HandleMessage consumes one dispatch message from the queue. Delivery is
// at-least-once: duplicates are shed by the task's own state machine, and a
// task claimed by another worker is treated as already handled.
func (d *downloadService) HandleMessage(ctx context.Context, data []byte) error {
	var msg port.DispatchMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		// a malformed message never becomes valid; drop it
		d.logger.Error("dropping malformed dispatch message", "error", err)
		return nil
	}
	return d.process(ctx, msg.TaskID)
}

func (d *downloadService) process(ctx context.Context, taskID uuid.UUID) error {

	task, err := d.claim(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}

	assetKey, fetchErr := d.fetchAndStore(ctx, task)
	if fetchErr != nil {
		d.logger.Warn("download attempt failed",
			"task_id", task.ID,
			"source_url", task.SourceURL,
			"retry_count", task.RetryCount,
			"error", fetchErr,
		)
		return d.recordFailure(ctx, taskID, fetchErr.Error())
	}
	return d.recordSuccess(ctx, taskID, assetKey)
}

// claim moves the task PENDING -> PROCESSING. Returns nil task when the
// message is a duplicate or another worker already owns the task.
func (d *downloadService) claim(ctx context.Context, taskID uuid.UUID) (*domain.ExternalDownloadTask, error) {
	var task *domain.ExternalDownloadTask

	txErr := d.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		found, err := uow.DownloadTaskRepo().FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if found.Status.IsTerminal() {
			return nil
		}
		if err := found.StartProcessing(d.now()); err != nil {
			return err
		}
		if err := uow.DownloadTaskRepo().Update(ctx, found); err != nil {
			return err
		}
		task = found
		return nil
	})

	if errors.Is(txErr, domain.ErrInvalidState) || errors.Is(txErr, domain.ErrConflict) {
		return nil, nil
	}
	if txErr != nil {
		return nil, fmt.Errorf("could not claim download task: %w", txErr)
	}
	return task, nil
}

func (d *downloadService) fetchAndStore(ctx context.Context, task *domain.ExternalDownloadTask) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, d.cfg.FetchTimeout)
	defer cancel()

	body, size, contentType, err := d.fetcher.Fetch(fetchCtx, task.SourceURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", task.SourceURL, err)
	}
	defer body.Close()

	assetKey := task.BuildAssetKey(extensionFromContentType(contentType), d.now())
	if _, err := d.storage.StoreObject(fetchCtx, task.Bucket, assetKey, body, size, contentType); err != nil {
		return "", fmt.Errorf("store %s: %w", assetKey, err)
	}
	return assetKey, nil
}

func (d *downloadService) recordSuccess(ctx context.Context, taskID uuid.UUID, assetKey string) error {
	txErr := d.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		task, err := uow.DownloadTaskRepo().FindByID(ctx, taskID)
		if err != nil {
			return err
		}

		events, err := task.Complete(assetKey, d.now())
		if err != nil {
			// a dead-letter signal may have finished the task first
			if errors.Is(err, domain.ErrInvalidState) {
				return nil
			}
			return err
		}

		if err := uow.DownloadTaskRepo().Update(ctx, task); err != nil {
			return err
		}
		return d.recordWebhookOutbox(ctx, uow, task, events)
	})
	if txErr != nil {
		return fmt.Errorf("could not record download success: %w", txErr)
	}
	return nil
}

// recordFailure applies the retry policy. While the budget holds the task
// returns to PENDING and a fresh dispatch row is enqueued; on exhaustion the
// task goes terminal with the fallback asset attached.
func (d *downloadService) recordFailure(ctx context.Context, taskID uuid.UUID, errorMessage string) error {
	txErr := d.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		task, err := uow.DownloadTaskRepo().FindByID(ctx, taskID)
		if err != nil {
			return err
		}

		fallback := d.cfg.FallbackAssetKey
		requeued, events, err := task.Fail(errorMessage, &fallback, d.now())
		if err != nil {
			if errors.Is(err, domain.ErrInvalidState) {
				return nil
			}
			return err
		}

		if err := uow.DownloadTaskRepo().Update(ctx, task); err != nil {
			return err
		}

		if requeued {
			outbox, err := domain.NewQueueOutbox(task.ID, d.cfg.DispatchTopic, string(task.Status), task.RetryCount, d.now())
			if err != nil {
				return err
			}
			return uow.OutboxRepo().Create(ctx, outbox)
		}
		return d.recordWebhookOutbox(ctx, uow, task, events)
	})
	if txErr != nil {
		return fmt.Errorf("could not record download failure: %w", txErr)
	}
	return nil
}

// GetTask loads one download task
func (d *downloadService) GetTask(ctx context.Context, id uuid.UUID) (*domain.ExternalDownloadTask, error) {
	return d.uow.DownloadTaskRepo().FindByID(ctx, id)
}
