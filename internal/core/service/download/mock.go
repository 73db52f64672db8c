package download

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// MockDownloadService is a mock implementation of DownloadService
type MockDownloadService struct {
	mock.Mock
}

// NewMockDownloadService creates a new MockDownloadService
func NewMockDownloadService() *MockDownloadService {
	return &MockDownloadService{}
}

func (m *MockDownloadService) Register(ctx context.Context, idempotencyKey, sourceURL string, access domain.AccessLevel, webhookURL *string) (*domain.ExternalDownloadTask, error) {
	args := m.Called(ctx, idempotencyKey, sourceURL, access, webhookURL)
	return args.Get(0).(*domain.ExternalDownloadTask), args.Error(1)
}

func (m *MockDownloadService) GetTask(ctx context.Context, id uuid.UUID) (*domain.ExternalDownloadTask, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.ExternalDownloadTask), args.Error(1)
}

func (m *MockDownloadService) HandleMessage(ctx context.Context, data []byte) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockDownloadService) HandleDeadLetter(ctx context.Context, taskID uuid.UUID, reason string) error {
	args := m.Called(ctx, taskID, reason)
	return args.Error(0)
}
