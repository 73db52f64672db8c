package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ryu-qqq/FileFlow-sub007/internal/config"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// dispatchService drains pending outbox rows toward the queue and webhook
// targets. It is the only component with I/O side effects toward either.
// Delivery is at-least-once: a crash between a successful external call and
// the status update causes a duplicate delivery on the next poll.
type dispatchService struct {
	outbox    port.OutboxRepository
	publisher port.QueuePublisher
	webhooks  port.WebhookClient
	cfg       config.DispatchConfig
	logger    *slog.Logger
}

// NewDispatchService creates a new outbox dispatch service
func NewDispatchService(outbox port.OutboxRepository, publisher port.QueuePublisher, webhooks port.WebhookClient, cfg config.DispatchConfig, logger *slog.Logger) port.DispatchService {
	return &dispatchService{outbox: outbox, publisher: publisher, webhooks: webhooks, cfg: cfg, logger: logger}
}

// DispatchQueue delivers one claimed batch of pending queue rows, oldest first
func (s *dispatchService) DispatchQueue(ctx context.Context) (int, error) {
	records, err := s.claim(ctx, domain.OutboxKindQueue)
	if err != nil {
		return 0, err
	}

	for i := range records {
		record := &records[i]
		msg := port.DispatchMessage{
			TaskID:    record.AggregateID,
			Attempt:   record.Attempt,
			CreatedAt: record.CreatedAt,
		}
		s.settle(ctx, record, s.publisher.Publish(ctx, record.Topic, msg))
	}
	return len(records), nil
}

// DispatchWebhooks delivers one claimed batch of pending webhook rows
func (s *dispatchService) DispatchWebhooks(ctx context.Context) (int, error) {
	records, err := s.claim(ctx, domain.OutboxKindWebhook)
	if err != nil {
		return 0, err
	}

	for i := range records {
		record := &records[i]
		if record.WebhookURL == nil {
			s.settle(ctx, record, fmt.Errorf("%w: webhook url", domain.ErrMissingField))
			continue
		}
		payload := port.WebhookPayload{
			DownloadTaskID: record.AggregateID,
			Status:         record.ReportedStatus,
			AssetRef:       record.AssetKey,
			ErrorMessage:   record.ErrorMessage,
			OccurredAt:     record.CreatedAt,
		}
		s.settle(ctx, record, s.webhooks.Notify(ctx, *record.WebhookURL, payload))
	}
	return len(records), nil
}

func (s *dispatchService) claim(ctx context.Context, kind domain.OutboxKind) ([]domain.OutboxRecord, error) {
	now := time.Now()
	records, err := s.outbox.ClaimPending(ctx, kind, s.cfg.BatchSize, now, now.Add(-s.cfg.LeaseDuration))
	if err != nil {
		return nil, fmt.Errorf("could not claim pending outbox rows: %w", err)
	}
	return records, nil
}

// settle updates one outbox row after a delivery attempt. A row that went
// terminal under a racing worker is logged and left as is.
func (s *dispatchService) settle(ctx context.Context, record *domain.OutboxRecord, deliveryErr error) {
	if deliveryErr == nil {
		if err := s.outbox.MarkSent(ctx, record.ID, time.Now()); err != nil {
			if errors.Is(err, domain.ErrInvalidState) {
				s.logger.Warn("outbox row settled by another worker", "outbox_id", record.ID)
				return
			}
			s.logger.Error("failed to mark outbox row sent", "outbox_id", record.ID, "error", err)
		}
		return
	}

	s.logger.Warn("outbox delivery failed",
		"outbox_id", record.ID,
		"kind", record.Kind,
		"retry_count", record.RetryCount,
		"error", deliveryErr,
	)

	if record.RetryCount+1 >= s.cfg.MaxRetries {
		if err := s.outbox.MarkFailed(ctx, record.ID, deliveryErr.Error(), time.Now()); err != nil && !errors.Is(err, domain.ErrInvalidState) {
			s.logger.Error("failed to mark outbox row failed", "outbox_id", record.ID, "error", err)
		}
		return
	}
	if err := s.outbox.ReleaseForRetry(ctx, record.ID, deliveryErr.Error()); err != nil && !errors.Is(err, domain.ErrInvalidState) {
		s.logger.Error("failed to release outbox row for retry", "outbox_id", record.ID, "error", err)
	}
}
