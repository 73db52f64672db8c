package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// SingleUploadResult is what a caller needs to perform a single-shot upload
type SingleUploadResult struct {
	SessionID    uuid.UUID
	Bucket       string
	StorageKey   string
	PresignedURL string
	ExpiresAt    time.Time
}

// MultipartUploadResult is what a caller needs to perform a multipart upload
type MultipartUploadResult struct {
	SessionID  uuid.UUID
	Bucket     string
	StorageKey string
	UploadID   string
	PartSize   int64
	TotalParts int
	// PartURLs is keyed by part number, 1..TotalParts
	PartURLs  map[int]string
	ExpiresAt time.Time
}

// MultipartManifest is the final result of a completed multipart session
type MultipartManifest struct {
	SessionID  uuid.UUID
	Bucket     string
	StorageKey string
	MergedETag string
	PartCount  int
	// Parts is ascending by part number regardless of upload order
	Parts []domain.CompletedPart
}

// SessionService is an interface to define the upload session service
type SessionService interface {
	CreateSingle(ctx context.Context, idempotencyKey, ownerID, fileName, contentType string, sizeBytes int64) (*SingleUploadResult, error)
	CompleteSingle(ctx context.Context, sessionID uuid.UUID, etag string) (*domain.SingleUploadSession, error)
	CancelSingle(ctx context.Context, sessionID uuid.UUID) error
	CreateMultipart(ctx context.Context, idempotencyKey, ownerID, fileName, contentType string, sizeBytes, partSize int64) (*MultipartUploadResult, error)
	MarkPartUploaded(ctx context.Context, sessionID uuid.UUID, partNumber int, etag string, sizeBytes int64) (*domain.CompletedPart, error)
	CompleteMultipart(ctx context.Context, sessionID uuid.UUID, parts []domain.PartETag) (*MultipartManifest, error)
	CancelMultipart(ctx context.Context, sessionID uuid.UUID) error
	ExpireSessions(ctx context.Context, now time.Time) (int, error)
}

// DownloadService is an interface to define the external download task service
type DownloadService interface {
	Register(ctx context.Context, idempotencyKey, sourceURL string, access domain.AccessLevel, webhookURL *string) (*domain.ExternalDownloadTask, error)
	GetTask(ctx context.Context, id uuid.UUID) (*domain.ExternalDownloadTask, error)
	// HandleMessage consumes one dispatch message from the queue
	HandleMessage(ctx context.Context, data []byte) error
	// HandleDeadLetter applies the out-of-band terminal-failure signal
	HandleDeadLetter(ctx context.Context, taskID uuid.UUID, reason string) error
}

// DispatchService is an interface to define the outbox dispatch worker
type DispatchService interface {
	// DispatchQueue delivers one batch of pending queue outbox rows,
	// returning how many were attempted
	DispatchQueue(ctx context.Context) (int, error)
	// DispatchWebhooks delivers one batch of pending webhook outbox rows
	DispatchWebhooks(ctx context.Context) (int, error)
}
