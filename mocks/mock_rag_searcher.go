package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentacheck/internal/domain"
)

// MockRagSearcher is a mock implementation of port.RagSearcher.
type MockRagSearcher struct {
	mock.Mock
}

func (m *MockRagSearcher) Match(ctx context.Context, embedding []float32, threshold float64, topK int) ([]domain.RagMatch, error) {
	args := m.Called(ctx, embedding, threshold, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RagMatch), args.Error(1)
}

// MockRagIndexer is a mock implementation of port.RagIndexer.
type MockRagIndexer struct {
	mock.Mock
}

func (m *MockRagIndexer) Insert(ctx context.Context, content, source string, embedding []float32) error {
	args := m.Called(ctx, content, source, embedding)
	return args.Error(0)
}
