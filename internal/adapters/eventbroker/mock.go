package eventbroker

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

type MockQueuePublisher struct {
	mock.Mock
}

func NewMockQueuePublisher() *MockQueuePublisher {
	return &MockQueuePublisher{}
}

func (m *MockQueuePublisher) Publish(ctx context.Context, topic string, msg port.DispatchMessage) error {
	args := m.Called(ctx, topic, msg)
	return args.Error(0)
}
