package fetch

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockSourceFetcher struct {
	mock.Mock
}

func NewMockSourceFetcher() *MockSourceFetcher {
	return &MockSourceFetcher{}
}

func (m *MockSourceFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, int64, string, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.String(2), args.Error(3)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(int64), args.String(2), args.Error(3)
}
