package download

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ryu-qqq/FileFlow-sub007/internal/config"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

type downloadService struct {
	uow     port.UnitOfWork
	storage port.FileStorage
	fetcher port.SourceFetcher
	cfg     config.DownloadConfig
	bucket  string
	logger  *slog.Logger
}

// NewDownloadService creates a new external download task service
func NewDownloadService(uow port.UnitOfWork, storage port.FileStorage, fetcher port.SourceFetcher, cfg config.DownloadConfig, bucket string, logger *slog.Logger) port.DownloadService {
	return &downloadService{uow: uow, storage: storage, fetcher: fetcher, cfg: cfg, bucket: bucket, logger: logger}
}

func (d *downloadService) now() time.Time {
	return time.Now()
}

// recordWebhookOutbox inserts one webhook outbox row per terminal event when
// the task registered a callback URL, inside the caller's transaction.
func (d *downloadService) recordWebhookOutbox(ctx context.Context, uow port.UnitOfWork, task *domain.ExternalDownloadTask, events []domain.Event) error {
	if !task.HasWebhook() {
		return nil
	}
	for _, event := range events {
		finished, ok := event.(domain.DownloadTaskFinished)
		if !ok {
			continue
		}
		record, err := domain.NewWebhookOutbox(finished.TaskID, *task.WebhookURL, string(finished.Status), finished.AssetKey, finished.ErrorMessage, finished.At)
		if err != nil {
			return err
		}
		if err := uow.OutboxRepo().Create(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func extensionFromContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/svg+xml":
		return "svg"
	case "image/bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	}
	if idx := strings.LastIndex(contentType, "/"); idx >= 0 && idx < len(contentType)-1 {
		return strings.ToLower(contentType[idx+1:])
	}
	return "bin"
}
