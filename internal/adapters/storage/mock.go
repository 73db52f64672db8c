package storage

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) GeneratePresignedURLSimpleUpload(ctx context.Context, bucket, key, contentType string) (string, time.Time, error) {
	args := m.Called(ctx, bucket, key, contentType)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockStorage) InitMultipartUpload(ctx context.Context, bucket, key, contentType string) (string, error) {
	args := m.Called(ctx, bucket, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) GeneratePresignedURLForPart(ctx context.Context, bucket, key, uploadID string, partNumber int) (string, error) {
	args := m.Called(ctx, bucket, key, uploadID, partNumber)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []port.CompletePart) (string, error) {
	args := m.Called(ctx, bucket, key, uploadID, parts)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error {
	args := m.Called(ctx, bucket, key, uploadID)
	return args.Error(0)
}

func (m *MockStorage) StoreObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, bucket, key, body, size, contentType)
	return args.String(0), args.Error(1)
}
