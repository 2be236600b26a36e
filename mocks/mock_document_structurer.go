package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docsift/internal/port"
)

// MockDocumentStructurer is a mock implementation of port.DocumentStructurer.
type MockDocumentStructurer struct {
	mock.Mock
}

func (m *MockDocumentStructurer) StructureText(ctx context.Context, input port.TextInput) (*port.StructuredResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.StructuredResult), args.Error(1)
}

func (m *MockDocumentStructurer) StructureImage(ctx context.Context, input port.ImageInput) (*port.StructuredResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.StructuredResult), args.Error(1)
}
