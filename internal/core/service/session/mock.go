package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// MockSessionService is a mock implementation of SessionService
type MockSessionService struct {
	mock.Mock
}

// NewMockSessionService creates a new MockSessionService
func NewMockSessionService() *MockSessionService {
	return &MockSessionService{}
}

func (m *MockSessionService) CreateSingle(ctx context.Context, idempotencyKey, ownerID, fileName, contentType string, sizeBytes int64) (*port.SingleUploadResult, error) {
	args := m.Called(ctx, idempotencyKey, ownerID, fileName, contentType, sizeBytes)
	return args.Get(0).(*port.SingleUploadResult), args.Error(1)
}

func (m *MockSessionService) CompleteSingle(ctx context.Context, sessionID uuid.UUID, etag string) (*domain.SingleUploadSession, error) {
	args := m.Called(ctx, sessionID, etag)
	return args.Get(0).(*domain.SingleUploadSession), args.Error(1)
}

func (m *MockSessionService) CancelSingle(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionService) CreateMultipart(ctx context.Context, idempotencyKey, ownerID, fileName, contentType string, sizeBytes, partSize int64) (*port.MultipartUploadResult, error) {
	args := m.Called(ctx, idempotencyKey, ownerID, fileName, contentType, sizeBytes, partSize)
	return args.Get(0).(*port.MultipartUploadResult), args.Error(1)
}

func (m *MockSessionService) MarkPartUploaded(ctx context.Context, sessionID uuid.UUID, partNumber int, etag string, sizeBytes int64) (*domain.CompletedPart, error) {
	args := m.Called(ctx, sessionID, partNumber, etag, sizeBytes)
	return args.Get(0).(*domain.CompletedPart), args.Error(1)
}

func (m *MockSessionService) CompleteMultipart(ctx context.Context, sessionID uuid.UUID, parts []domain.PartETag) (*port.MultipartManifest, error) {
	args := m.Called(ctx, sessionID, parts)
	return args.Get(0).(*port.MultipartManifest), args.Error(1)
}

func (m *MockSessionService) CancelMultipart(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionService) ExpireSessions(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}
