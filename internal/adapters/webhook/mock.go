package webhook

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

type MockWebhookClient struct {
	mock.Mock
}

func NewMockWebhookClient() *MockWebhookClient {
	return &MockWebhookClient{}
}

func (m *MockWebhookClient) Notify(ctx context.Context, url string, payload port.WebhookPayload) error {
	args := m.Called(ctx, url, payload)
	return args.Error(0)
}
