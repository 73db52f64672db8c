package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ryu-qqq/FileFlow-sub007/internal/config"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// maxDeliveriesAdvisory is the JetStream advisory payload published when a
// message exhausts its delivery budget.
type maxDeliveriesAdvisory struct {
	Stream     string `json:"stream"`
	Consumer   string `json:"consumer"`
	StreamSeq  uint64 `json:"stream_seq"`
	Deliveries int    `json:"deliveries"`
}

// DeadLetterConsumer listens to the MAX_DELIVERIES advisory of the dispatch
// consumer and forces the referenced task to terminal failure.
type DeadLetterConsumer struct {
	logger  *slog.Logger
	conn    *nats.Conn
	js      jetstream.JetStream
	config  config.NATSConfig
	service port.DownloadService
	sub     *nats.Subscription
}

// NewDeadLetterConsumer creates a new advisory consumer
func NewDeadLetterConsumer(cfg config.NATSConfig, service port.DownloadService, logger *slog.Logger) (*DeadLetterConsumer, error) {
	conn, js, err := connect(cfg, cfg.ConsumerName+"-deadletter", logger)
	if err != nil {
		return nil, err
	}

	return &DeadLetterConsumer{
		conn:    conn,
		js:      js,
		config:  cfg,
		service: service,
		logger:  logger,
	}, nil
}

// Subscribe starts listening for max-deliveries advisories
func (d *DeadLetterConsumer) Subscribe(ctx context.Context) error {
	subject := fmt.Sprintf("$JS.EVENT.ADVISORY.CONSUMER.MAX_DELIVERIES.%s.%s", d.config.StreamName, d.config.ConsumerName)

	sub, err := d.conn.Subscribe(subject, func(msg *nats.Msg) {
		var advisory maxDeliveriesAdvisory
		if err := json.Unmarshal(msg.Data, &advisory); err != nil {
			d.logger.Error("malformed max-deliveries advisory", "error", err)
			return
		}
		if err := d.handle(ctx, advisory); err != nil {
			d.logger.Error("failed to handle dead letter",
				"stream_seq", advisory.StreamSeq, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to advisory: %w", err)
	}
	d.sub = sub

	d.logger.Info("dead letter subscription started", "subject", subject)
	return nil
}

// handle resolves the advisory back to the original dispatch message and
// reports the terminal failure.
func (d *DeadLetterConsumer) handle(ctx context.Context, advisory maxDeliveriesAdvisory) error {
	stream, err := d.js.Stream(ctx, advisory.Stream)
	if err != nil {
		return fmt.Errorf("failed to look up stream %s: %w", advisory.Stream, err)
	}

	raw, err := stream.GetMsg(ctx, advisory.StreamSeq)
	if err != nil {
		return fmt.Errorf("failed to fetch message %d: %w", advisory.StreamSeq, err)
	}

	var dispatch port.DispatchMessage
	if err := json.Unmarshal(raw.Data, &dispatch); err != nil {
		return fmt.Errorf("malformed dispatch message at seq %d: %w", advisory.StreamSeq, err)
	}

	reason := fmt.Sprintf("delivery budget exhausted after %d deliveries", advisory.Deliveries)
	return d.service.HandleDeadLetter(ctx, dispatch.TaskID, reason)
}

// Close graceful shutdown
func (d *DeadLetterConsumer) Close() error {
	if d.sub != nil {
		if err := d.sub.Unsubscribe(); err != nil {
			d.logger.Error("failed to unsubscribe", "error", err)
		}
	}
	if d.conn != nil {
		d.conn.Close()
	}
	return nil
}
