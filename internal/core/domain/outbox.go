package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutboxKind discriminates the delivery channel of an outbox record
type OutboxKind string

const (
	OutboxKindQueue   OutboxKind = "queue"
	OutboxKindWebhook OutboxKind = "webhook"
)

// OutboxStatus represents the dispatch status of an outbox record
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusFailed  OutboxStatus = "failed"
)

// IsTerminal reports whether the record can no longer be dispatched
func (s OutboxStatus) IsTerminal() bool {
	return s == OutboxStatusSent || s == OutboxStatusFailed
}

// OutboxRecord pairs a committed aggregate transition with the intent to
// deliver its side effect. A record is inserted in the same transaction as the
// transition it reports and is only ever mutated by the dispatch worker.
// Records are never deleted.
type OutboxRecord struct {
	ID             uuid.UUID
	Kind           OutboxKind
	AggregateID    uuid.UUID
	Topic          string
	ReportedStatus string
	AssetKey       *string
	ErrorMessage   *string
	WebhookURL     *string
	Attempt        int
	Status         OutboxStatus
	RetryCount     int
	LastError      *string
	ClaimedAt      *time.Time
	ProcessedAt    *time.Time
	CreatedAt      time.Time
}

// NewQueueOutbox creates a PENDING record whose dispatch publishes a queue
// message for the given aggregate on the given topic.
func NewQueueOutbox(aggregateID uuid.UUID, topic, reportedStatus string, attempt int, now time.Time) (*OutboxRecord, error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: topic", ErrMissingField)
	}
	return &OutboxRecord{
		ID:             uuid.New(),
		Kind:           OutboxKindQueue,
		AggregateID:    aggregateID,
		Topic:          topic,
		ReportedStatus: reportedStatus,
		Attempt:        attempt,
		Status:         OutboxStatusPending,
		CreatedAt:      now,
	}, nil
}

// NewWebhookOutbox creates a PENDING record whose dispatch POSTs the final
// download status to the task's callback URL.
func NewWebhookOutbox(taskID uuid.UUID, webhookURL, reportedStatus string, assetKey, errorMessage *string, now time.Time) (*OutboxRecord, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("%w: webhook url", ErrMissingField)
	}
	return &OutboxRecord{
		ID:             uuid.New(),
		Kind:           OutboxKindWebhook,
		AggregateID:    taskID,
		ReportedStatus: reportedStatus,
		AssetKey:       assetKey,
		ErrorMessage:   errorMessage,
		WebhookURL:     &webhookURL,
		Status:         OutboxStatusPending,
		CreatedAt:      now,
	}, nil
}

// RehydrateOutboxRecord rebuilds a persisted record
func RehydrateOutboxRecord(id uuid.UUID, kind OutboxKind, aggregateID uuid.UUID, topic, reportedStatus string, assetKey, errorMessage, webhookURL *string, attempt int, status OutboxStatus, retryCount int, lastError *string, claimedAt, processedAt *time.Time, createdAt time.Time) *OutboxRecord {
	return &OutboxRecord{
		ID:             id,
		Kind:           kind,
		AggregateID:    aggregateID,
		Topic:          topic,
		ReportedStatus: reportedStatus,
		AssetKey:       assetKey,
		ErrorMessage:   errorMessage,
		WebhookURL:     webhookURL,
		Attempt:        attempt,
		Status:         status,
		RetryCount:     retryCount,
		LastError:      lastError,
		ClaimedAt:      claimedAt,
		ProcessedAt:    processedAt,
		CreatedAt:      createdAt,
	}
}

// MarkSent records successful delivery. Rejects records that are already
// terminal so a racing second claimant cannot double-report.
func (o *OutboxRecord) MarkSent(now time.Time) error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: outbox already %s", ErrInvalidState, o.Status)
	}
	o.Status = OutboxStatusSent
	o.ProcessedAt = &now
	o.ClaimedAt = nil
	return nil
}

// RecordFailure notes a failed delivery attempt. The record stays PENDING
// while retries remain and becomes FAILED once the budget is exhausted.
// Returns true when the record went terminal.
func (o *OutboxRecord) RecordFailure(errorMessage string, maxRetries int, now time.Time) (terminal bool, err error) {
	if o.Status.IsTerminal() {
		return false, fmt.Errorf("%w: outbox already %s", ErrInvalidState, o.Status)
	}
	o.RetryCount++
	o.LastError = &errorMessage
	o.ClaimedAt = nil

	if o.RetryCount >= maxRetries {
		o.Status = OutboxStatusFailed
		o.ProcessedAt = &now
		return true, nil
	}
	return false, nil
}
