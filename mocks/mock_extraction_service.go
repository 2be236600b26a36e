package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docsift/internal/domain"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Extract(ctx context.Context, ref domain.DocumentReference) (*domain.ExtractionResponse, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionResponse), args.Error(1)
}

func (m *MockExtractionService) ExtractFlat(ctx context.Context, ref domain.DocumentReference) (domain.FlatResult, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.FlatResult), args.Error(1)
}
