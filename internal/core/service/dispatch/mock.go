package dispatch

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDispatchService is a mock implementation of port.DispatchService
type MockDispatchService struct {
	mock.Mock
}

func NewMockDispatchService() *MockDispatchService {
	return &MockDispatchService{}
}

func (m *MockDispatchService) DispatchQueue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDispatchService) DispatchWebhooks(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
