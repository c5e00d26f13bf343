package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentacheck/internal/domain"
)

// MockFileResolver is a mock implementation of port.FileResolver.
type MockFileResolver struct {
	mock.Mock
}

func (m *MockFileResolver) ResolveReadable(ctx context.Context, paths []string, ttlSeconds int64) ([]domain.ResolvedFile, error) {
	args := m.Called(ctx, paths, ttlSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResolvedFile), args.Error(1)
}

func (m *MockFileResolver) NormalizeImages(ctx context.Context, paths []string) []string {
	args := m.Called(ctx, paths)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}
