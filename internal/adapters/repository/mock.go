package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

type MockSingleSessionRepository struct {
	mock.Mock
}

func NewMockSingleSessionRepository() *MockSingleSessionRepository {
	return &MockSingleSessionRepository{}
}

func (m *MockSingleSessionRepository) Create(ctx context.Context, session *domain.SingleUploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSingleSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SingleUploadSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SingleUploadSession), args.Error(1)
}

func (m *MockSingleSessionRepository) Update(ctx context.Context, session *domain.SingleUploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSingleSessionRepository) FindAllExpired(ctx context.Context, now time.Time, limit int) ([]domain.SingleUploadSession, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]domain.SingleUploadSession), args.Error(1)
}

type MockMultipartSessionRepository struct {
	mock.Mock
}

func NewMockMultipartSessionRepository() *MockMultipartSessionRepository {
	return &MockMultipartSessionRepository{}
}

func (m *MockMultipartSessionRepository) Create(ctx context.Context, session *domain.MultipartUploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockMultipartSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.MultipartUploadSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MultipartUploadSession), args.Error(1)
}

func (m *MockMultipartSessionRepository) Update(ctx context.Context, session *domain.MultipartUploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockMultipartSessionRepository) UpsertPart(ctx context.Context, part domain.CompletedPart) error {
	args := m.Called(ctx, part)
	return args.Error(0)
}

func (m *MockMultipartSessionRepository) FindAllExpired(ctx context.Context, now time.Time, limit int) ([]domain.MultipartUploadSession, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]domain.MultipartUploadSession), args.Error(1)
}

type MockDownloadTaskRepository struct {
	mock.Mock
}

func NewMockDownloadTaskRepository() *MockDownloadTaskRepository {
	return &MockDownloadTaskRepository{}
}

func (m *MockDownloadTaskRepository) Create(ctx context.Context, task *domain.ExternalDownloadTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockDownloadTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ExternalDownloadTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExternalDownloadTask), args.Error(1)
}

func (m *MockDownloadTaskRepository) Update(ctx context.Context, task *domain.ExternalDownloadTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

type MockOutboxRepository struct {
	mock.Mock
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, record *domain.OutboxRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.OutboxRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboxRecord), args.Error(1)
}

func (m *MockOutboxRepository) ClaimPending(ctx context.Context, kind domain.OutboxKind, limit int, now, leaseExpiry time.Time) ([]domain.OutboxRecord, error) {
	args := m.Called(ctx, kind, limit, now, leaseExpiry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutboxRecord), args.Error(1)
}

func (m *MockOutboxRepository) MarkSent(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	args := m.Called(ctx, id, processedAt)
	return args.Error(0)
}

func (m *MockOutboxRepository) ReleaseForRetry(ctx context.Context, id uuid.UUID, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, processedAt time.Time) error {
	args := m.Called(ctx, id, lastError, processedAt)
	return args.Error(0)
}

type MockIdempotencyRepository struct {
	mock.Mock
}

func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{}
}

func (m *MockIdempotencyRepository) Find(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Error(1)
}

func (m *MockIdempotencyRepository) Create(ctx context.Context, record *domain.IdempotencyRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockUnitOfWork struct {
	mock.Mock
	singleSessionRepo    *MockSingleSessionRepository
	multipartSessionRepo *MockMultipartSessionRepository
	downloadTaskRepo     *MockDownloadTaskRepository
	outboxRepo           *MockOutboxRepository
	idempotencyRepo      *MockIdempotencyRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		singleSessionRepo:    &MockSingleSessionRepository{},
		multipartSessionRepo: &MockMultipartSessionRepository{},
		downloadTaskRepo:     &MockDownloadTaskRepository{},
		outboxRepo:           &MockOutboxRepository{},
		idempotencyRepo:      &MockIdempotencyRepository{},
	}
}

func (m *MockUnitOfWork) SingleSessionRepo() port.SingleUploadSessionRepository {
	return m.singleSessionRepo
}

func (m *MockUnitOfWork) MultipartSessionRepo() port.MultipartUploadSessionRepository {
	return m.multipartSessionRepo
}

func (m *MockUnitOfWork) DownloadTaskRepo() port.DownloadTaskRepository {
	return m.downloadTaskRepo
}

func (m *MockUnitOfWork) OutboxRepo() port.OutboxRepository {
	return m.outboxRepo
}

func (m *MockUnitOfWork) IdempotencyRepo() port.IdempotencyRepository {
	return m.idempotencyRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetSingleSessionRepoMock() *MockSingleSessionRepository {
	return m.singleSessionRepo
}

func (m *MockUnitOfWork) GetMultipartSessionRepoMock() *MockMultipartSessionRepository {
	return m.multipartSessionRepo
}

func (m *MockUnitOfWork) GetDownloadTaskRepoMock() *MockDownloadTaskRepository {
	return m.downloadTaskRepo
}

func (m *MockUnitOfWork) GetOutboxRepoMock() *MockOutboxRepository {
	return m.outboxRepo
}

func (m *MockUnitOfWork) GetIdempotencyRepoMock() *MockIdempotencyRepository {
	return m.idempotencyRepo
}
