package port

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DispatchMessage is the queue wire schema. It is deliberately minimal: the
// consumer re-reads full state from the task's own store.
type DispatchMessage struct {
	TaskID    uuid.UUID `json:"taskId"`
	Attempt   int       `json:"attempt"`
	CreatedAt time.Time `json:"createdAt"`
}

// WebhookPayload is POSTed to a task's stored callback URL. Delivery is
// at-least-once; consumers dedupe on downloadTaskId+status.
type WebhookPayload struct {
	DownloadTaskID uuid.UUID `json:"downloadTaskId"`
	Status         string    `json:"status"`
	AssetRef       *string   `json:"assetRef,omitempty"`
	ErrorMessage   *string   `json:"errorMessage,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// QueuePublisher is an interface to publish dispatch messages to the durable queue
type QueuePublisher interface {
	Publish(ctx context.Context, topic string, msg DispatchMessage) error
}

// WebhookClient is an interface to deliver webhook callbacks
type WebhookClient interface {
	Notify(ctx context.Context, url string, payload WebhookPayload) error
}

// EventConsumer is an interface to define a queue consumer (nats, kafka, ...)
type EventConsumer interface {
	Subscribe(ctx context.Context, handler MessageService) error
	Close() error
}

// MessageService is an interface to define message handling
type MessageService interface {
	HandleMessage(ctx context.Context, data []byte) error
}
