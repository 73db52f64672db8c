package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is a fact produced by an aggregate transition. Mutating operations
// return the events they produced so the caller decides what to do with them;
// there is no hidden event buffer to drain.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// UploadCompleted is emitted when a single or multipart session reaches COMPLETED
type UploadCompleted struct {
	SessionID  uuid.UUID
	UploadType string
	Bucket     string
	StorageKey string
	ETag       string
	SizeBytes  int64
	At         time.Time
}

func (e UploadCompleted) EventName() string     { return "upload.completed" }
func (e UploadCompleted) OccurredAt() time.Time { return e.At }

// DownloadTaskRegistered is emitted when an external download task is created
type DownloadTaskRegistered struct {
	TaskID    uuid.UUID
	SourceURL string
	At        time.Time
}

func (e DownloadTaskRegistered) EventName() string     { return "download.registered" }
func (e DownloadTaskRegistered) OccurredAt() time.Time { return e.At }

// DownloadTaskFinished is emitted when a download task reaches a terminal state
type DownloadTaskFinished struct {
	TaskID       uuid.UUID
	Status       DownloadTaskStatus
	AssetKey     *string
	ErrorMessage *string
	At           time.Time
}

func (e DownloadTaskFinished) EventName() string     { return "download.finished" }
func (e DownloadTaskFinished) OccurredAt() time.Time { return e.At }
