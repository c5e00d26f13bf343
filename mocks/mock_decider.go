package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentacheck/internal/domain"
)

// MockDecider is a mock implementation of handler.Decider.
type MockDecider struct {
	mock.Mock
}

func (m *MockDecider) Decide(ctx context.Context, req domain.DecisionRequest, correlationID string) (*domain.DecisionCandidate, error) {
	args := m.Called(ctx, req, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DecisionCandidate), args.Error(1)
}
