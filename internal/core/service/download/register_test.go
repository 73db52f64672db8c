package download_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/fetch"
	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/repository"
	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/storage"
	"github.com/ryu-qqq/FileFlow-sub007/internal/config"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/service/download"
)

var defaultCfg = config.DownloadConfig{
	MaxRetries:       3,
	FetchTimeout:     time.Minute,
	DispatchTopic:    "fileflow.downloads.dispatch",
	FallbackAssetKey: "public/defaults/placeholder.png",
}

const testBucket = "fileflow-test"

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestDownloadService_Register_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	svc := download.NewDownloadService(mockUow, storage.NewMockStorage(), fetch.NewMockSourceFetcher(), defaultCfg, testBucket, testLogger)

	webhookURL := "https://caller.example.com/hook"

	mockUow.GetIdempotencyRepoMock().
		On("Find", ctx, "key-dl").
		Return(nil, nil)

	mockUow.GetDownloadTaskRepoMock().
		On("Create", ctx, mock.MatchedBy(func(task *domain.ExternalDownloadTask) bool {
			return task.Status == domain.DownloadTaskStatusPending &&
				task.SourceURL == "https://cdn.example.com/file.jpg" &&
				task.MaxRetries == defaultCfg.MaxRetries
		})).
		Return(nil)

	mockUow.GetOutboxRepoMock().
		On("Create", ctx, mock.MatchedBy(func(r *domain.OutboxRecord) bool {
			return r.Kind == domain.OutboxKindQueue && r.Topic == defaultCfg.DispatchTopic
		})).
		Return(nil)

	mockUow.GetIdempotencyRepoMock().
		On("Create", ctx, mock.MatchedBy(func(r *domain.IdempotencyRecord) bool {
			return r.Key == "key-dl" && r.OutboxID != nil
		})).
		Return(nil)

	mockUow.On("Execute", ctx, mock.Anything).Return(nil)

	// Act
	task, err := svc.Register(ctx, "key-dl", "https://cdn.example.com/file.jpg", domain.AccessLevelPublic, &webhookURL)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.DownloadTaskStatusPending, task.Status)
	assert.Equal(t, testBucket, task.Bucket)
	require.NotNil(t, task.WebhookURL)
	assert.Equal(t, webhookURL, *task.WebhookURL)

	mockUow.AssertExpectations(t)
	mockUow.GetDownloadTaskRepoMock().AssertExpectations(t)
	mockUow.GetOutboxRepoMock().AssertExpectations(t)
	mockUow.GetIdempotencyRepoMock().AssertExpectations(t)
}

func TestDownloadService_Register_ReplaysExistingKey(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	svc := download.NewDownloadService(mockUow, storage.NewMockStorage(), fetch.NewMockSourceFetcher(), defaultCfg, testBucket, testLogger)

	now := time.Now()
	existing, err := domain.NewExternalDownloadTask("https://cdn.example.com/file.jpg", testBucket, domain.AccessLevelPublic, nil, 3, now)
	require.NoError(t, err)

	record := &domain.IdempotencyRecord{Key: "key-dl", AggregateID: existing.ID, CreatedAt: now}

	mockUow.GetIdempotencyRepoMock().
		On("Find", ctx, "key-dl").
		Return(record, nil)

	mockUow.GetDownloadTaskRepoMock().
		On("FindByID", ctx, existing.ID).
		Return(existing, nil)

	mockUow.On("Execute", ctx, mock.Anything).Return(nil)

	// Act
	task, err := svc.Register(ctx, "key-dl", "https://cdn.example.com/file.jpg", domain.AccessLevelPublic, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, existing.ID, task.ID)

	// no second task, no second outbox row
	mockUow.GetDownloadTaskRepoMock().AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUow.GetOutboxRepoMock().AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDownloadService_Register_KeySpentOnAnotherOperation(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	svc := download.NewDownloadService(mockUow, storage.NewMockStorage(), fetch.NewMockSourceFetcher(), defaultCfg, testBucket, testLogger)

	// the key resolves, but its aggregate is not a download task
	record := &domain.IdempotencyRecord{Key: "key-dl", AggregateID: uuid.New(), CreatedAt: time.Now()}

	mockUow.GetIdempotencyRepoMock().
		On("Find", ctx, "key-dl").
		Return(record, nil)

	mockUow.GetDownloadTaskRepoMock().
		On("FindByID", ctx, record.AggregateID).
		Return((*domain.ExternalDownloadTask)(nil), domain.ErrTaskNotFound)

	mockUow.On("Execute", ctx, mock.Anything).Return(nil)

	// Act
	task, err := svc.Register(ctx, "key-dl", "https://cdn.example.com/file.jpg", domain.AccessLevelPublic, nil)

	// Assert
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Nil(t, task)
	mockUow.GetDownloadTaskRepoMock().AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUow.GetOutboxRepoMock().AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDownloadService_Register_MissingIdempotencyKey(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc := download.NewDownloadService(
		repository.NewMockUnitOfWork(),
		storage.NewMockStorage(),
		fetch.NewMockSourceFetcher(),
		defaultCfg,
		testBucket,
		testLogger,
	)

	// Act
	task, err := svc.Register(ctx, "", "https://cdn.example.com/file.jpg", domain.AccessLevelPublic, nil)

	// Assert
	assert.Nil(t, task)
	require.ErrorIs(t, err, domain.ErrMissingField)
}

func TestDownloadService_Register_RejectsBadSourceURL(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	svc := download.NewDownloadService(mockUow, storage.NewMockStorage(), fetch.NewMockSourceFetcher(), defaultCfg, testBucket, testLogger)

	mockUow.GetIdempotencyRepoMock().
		On("Find", ctx, "key-dl").
		Return(nil, nil)

	mockUow.On("Execute", ctx, mock.Anything).Return(domain.ErrInvalidSourceURL)

	// Act
	task, err := svc.Register(ctx, "key-dl", "ftp://cdn.example.com/file.jpg", domain.AccessLevelPublic, nil)

	// Assert
	assert.Nil(t, task)
	require.ErrorIs(t, err, domain.ErrInvalidSourceURL)
	mockUow.GetDownloadTaskRepoMock().AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
