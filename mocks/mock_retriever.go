package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentacheck/internal/domain"
)

// MockRetriever is a mock implementation of engine.Retriever.
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Search(ctx context.Context, query string, topK int, threshold float64) []domain.RagMatch {
	args := m.Called(ctx, query, topK, threshold)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.RagMatch)
}
