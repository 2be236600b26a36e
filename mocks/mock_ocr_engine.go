package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docsift/internal/domain"
)

// MockOCREngine is a mock implementation of port.OCREngine.
type MockOCREngine struct {
	mock.Mock
}

func (m *MockOCREngine) Recognize(ctx context.Context, image []byte, format domain.FileType) (string, error) {
	args := m.Called(ctx, image, format)
	return args.String(0), args.Error(1)
}
