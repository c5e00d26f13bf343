package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentacheck/internal/domain"
)

// MockTabularExtractor is a mock implementation of port.TabularExtractor.
type MockTabularExtractor struct {
	mock.Mock
}

func (m *MockTabularExtractor) ExtractText(ctx context.Context, url string, maxChars int) (string, error) {
	args := m.Called(ctx, url, maxChars)
	return args.String(0), args.Error(1)
}

func (m *MockTabularExtractor) ExtractHTML(ctx context.Context, url string, maxChars int) (string, error) {
	args := m.Called(ctx, url, maxChars)
	return args.String(0), args.Error(1)
}

func (m *MockTabularExtractor) SumNumericCells(ctx context.Context, url string) (domain.MovimientosSummary, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(domain.MovimientosSummary), args.Error(1)
}
