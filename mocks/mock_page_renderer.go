package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPageRenderer is a mock implementation of port.PageRenderer.
type MockPageRenderer struct {
	mock.Mock
}

func (m *MockPageRenderer) PageCount(ctx context.Context, pdf []byte) (int, error) {
	args := m.Called(ctx, pdf)
	return args.Int(0), args.Error(1)
}

func (m *MockPageRenderer) RenderPage(ctx context.Context, pdf []byte, pageIndex, dpi int) ([]byte, error) {
	args := m.Called(ctx, pdf, pageIndex, dpi)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
