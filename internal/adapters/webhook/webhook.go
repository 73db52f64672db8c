package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// Client POSTs webhook payloads to caller-registered URLs
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns Client with the given per-request timeout
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Notify POSTs the payload as JSON. Any non-2xx response is an error so the
// dispatch worker retries the delivery.
func (c *Client) Notify(ctx context.Context, url string, payload port.WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.logger.Info("webhook delivered",
		slog.String("taskID", payload.DownloadTaskID.String()),
		slog.String("status", payload.Status))
	return nil
}
