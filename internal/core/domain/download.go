package domain

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// DownloadTaskStatus represents the status of an external download task
type DownloadTaskStatus string

const (
	DownloadTaskStatusPending    DownloadTaskStatus = "pending"
	DownloadTaskStatusProcessing DownloadTaskStatus = "processing"
	DownloadTaskStatusCompleted  DownloadTaskStatus = "completed"
	DownloadTaskStatusFailed     DownloadTaskStatus = "failed"
)

// IsTerminal reports whether no further transitions are allowed
func (s DownloadTaskStatus) IsTerminal() bool {
	return s == DownloadTaskStatusCompleted || s == DownloadTaskStatusFailed
}

// AccessLevel classifies where a fetched object lands in the bucket
type AccessLevel string

const (
	AccessLevelPublic  AccessLevel = "public"
	AccessLevelPrivate AccessLevel = "private"
)

// ExternalDownloadTask is a server-side fetch-and-store job with bounded retry.
//
// PENDING -> PROCESSING -> COMPLETED | FAILED, with PROCESSING -> PENDING as the
// retry edge while retryCount stays under maxRetries.
type ExternalDownloadTask struct {
	ID         uuid.UUID
	SourceURL  string
	Bucket     string
	Access     AccessLevel
	WebhookURL *string
	Status     DownloadTaskStatus
	RetryCount int
	MaxRetries int
	AssetKey   *string
	LastError  *string
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewExternalDownloadTask creates a PENDING task
func NewExternalDownloadTask(sourceURL, bucket string, access AccessLevel, webhookURL *string, maxRetries int, now time.Time) (*ExternalDownloadTask, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket", ErrMissingField)
	}
	if access != AccessLevelPublic && access != AccessLevelPrivate {
		return nil, fmt.Errorf("%w: access level %q", ErrMissingField, access)
	}
	if maxRetries < 1 {
		return nil, fmt.Errorf("%w: max retries %d", ErrRetryExhausted, maxRetries)
	}
	parsed, err := url.Parse(sourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSourceURL, sourceURL)
	}
	if webhookURL != nil {
		if w, err := url.Parse(*webhookURL); err != nil || (w.Scheme != "http" && w.Scheme != "https") || w.Host == "" {
			return nil, fmt.Errorf("%w: webhook %s", ErrInvalidSourceURL, *webhookURL)
		}
	}

	return &ExternalDownloadTask{
		ID:         uuid.New(),
		SourceURL:  sourceURL,
		Bucket:     bucket,
		Access:     access,
		WebhookURL: webhookURL,
		Status:     DownloadTaskStatusPending,
		RetryCount: 0,
		MaxRetries: maxRetries,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// RehydrateExternalDownloadTask rebuilds a persisted task without applying defaults
func RehydrateExternalDownloadTask(id uuid.UUID, sourceURL, bucket string, access AccessLevel, webhookURL *string, status DownloadTaskStatus, retryCount, maxRetries int, assetKey, lastError *string, version int64, createdAt, updatedAt time.Time) *ExternalDownloadTask {
	return &ExternalDownloadTask{
		ID:         id,
		SourceURL:  sourceURL,
		Bucket:     bucket,
		Access:     access,
		WebhookURL: webhookURL,
		Status:     status,
		RetryCount: retryCount,
		MaxRetries: maxRetries,
		AssetKey:   assetKey,
		LastError:  lastError,
		Version:    version,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// Registered builds the event announcing this task to the dispatch queue
func (t *ExternalDownloadTask) Registered() Event {
	return DownloadTaskRegistered{TaskID: t.ID, SourceURL: t.SourceURL, At: t.CreatedAt}
}

// StartProcessing claims the task: PENDING -> PROCESSING only
func (t *ExternalDownloadTask) StartProcessing(now time.Time) error {
	if t.Status != DownloadTaskStatusPending {
		return fmt.Errorf("%w: cannot start processing in status %s", ErrInvalidState, t.Status)
	}
	t.Status = DownloadTaskStatusProcessing
	t.UpdatedAt = now
	return nil
}

// Complete attaches the stored asset key and moves PROCESSING to COMPLETED.
// A previous attempt's error is cleared.
func (t *ExternalDownloadTask) Complete(assetKey string, now time.Time) ([]Event, error) {
	if t.Status != DownloadTaskStatusProcessing {
		return nil, fmt.Errorf("%w: cannot complete in status %s", ErrInvalidState, t.Status)
	}
	if assetKey == "" {
		return nil, fmt.Errorf("%w: asset key", ErrMissingField)
	}
	t.Status = DownloadTaskStatusCompleted
	t.AssetKey = &assetKey
	t.LastError = nil
	t.UpdatedAt = now

	return []Event{DownloadTaskFinished{
		TaskID:   t.ID,
		Status:   t.Status,
		AssetKey: t.AssetKey,
		At:       now,
	}}, nil
}

// Fail records a failed attempt. While the retry budget holds, the task goes
// back to PENDING for re-queueing. On exhaustion it becomes FAILED and the
// fallback asset, when given, is attached. Returns the events produced and
// whether the task was re-queued.
func (t *ExternalDownloadTask) Fail(errorMessage string, fallbackAssetKey *string, now time.Time) (requeued bool, events []Event, err error) {
	if t.Status != DownloadTaskStatusProcessing {
		return false, nil, fmt.Errorf("%w: cannot fail in status %s", ErrInvalidState, t.Status)
	}

	t.RetryCount++
	t.LastError = &errorMessage
	t.UpdatedAt = now

	if t.RetryCount < t.MaxRetries {
		t.Status = DownloadTaskStatusPending
		return true, nil, nil
	}

	t.Status = DownloadTaskStatusFailed
	if fallbackAssetKey != nil {
		t.AssetKey = fallbackAssetKey
	}
	return false, []Event{DownloadTaskFinished{
		TaskID:       t.ID,
		Status:       t.Status,
		AssetKey:     t.AssetKey,
		ErrorMessage: t.LastError,
		At:           now,
	}}, nil
}

// MarkAsFailedFromDeadLetter forces terminal failure on a dead-letter signal.
// Already-terminal tasks are left untouched and handled=false is returned.
// The retry count is not incremented: it counts worker-observed attempts and a
// dead-letter delivery is an out-of-band final verdict, not an attempt.
func (t *ExternalDownloadTask) MarkAsFailedFromDeadLetter(errorMessage string, fallbackAssetKey *string, now time.Time) (handled bool, events []Event) {
	if t.Status.IsTerminal() {
		return false, nil
	}

	t.Status = DownloadTaskStatusFailed
	t.LastError = &errorMessage
	if fallbackAssetKey != nil {
		t.AssetKey = fallbackAssetKey
	}
	t.UpdatedAt = now

	return true, []Event{DownloadTaskFinished{
		TaskID:       t.ID,
		Status:       t.Status,
		AssetKey:     t.AssetKey,
		ErrorMessage: t.LastError,
		At:           now,
	}}
}

// CanRetry reports whether the retry budget still allows another attempt
func (t *ExternalDownloadTask) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

// HasWebhook reports whether a callback URL was registered
func (t *ExternalDownloadTask) HasWebhook() bool {
	return t.WebhookURL != nil && *t.WebhookURL != ""
}

// BuildAssetKey derives the storage key for the fetched object:
// {access}/external-download/{yyyy/mm/dd}/{taskID}.{ext}
func (t *ExternalDownloadTask) BuildAssetKey(extension string, now time.Time) string {
	if extension == "" {
		extension = "bin"
	}
	return fmt.Sprintf("%s/external-download/%s/%s.%s", t.Access, now.UTC().Format("2006/01/02"), t.ID.String(), extension)
}
