package normalizer_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docsift/internal/config"
	"docsift/internal/domain"
	"docsift/internal/normalizer"
	"docsift/mocks"
)

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		RenderDPI:       200,
		MaxPages:        20,
		PageConcurrency: 4,
	}
}

func imagePayload(ft domain.FileType, data []byte) *domain.ValidatedPayload {
	return &domain.ValidatedPayload{Data: data, FileType: ft, SizeBytes: int64(len(data))}
}

func TestNormalize_ImageBecomesSinglePage(t *testing.T) {
	renderer := new(mocks.MockPageRenderer)
	n := normalizer.New(renderer, testPipelineConfig())

	data := []byte{0x89, 'P', 'N', 'G'}
	pages, err := n.Normalize(context.Background(), imagePayload(domain.FileTypePNG, data))

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 0, pages[0].Index)
	assert.Equal(t, data, pages[0].Image)
	assert.Equal(t, domain.FileTypePNG, pages[0].Format)
	assert.Empty(t, pages[0].Text)
	renderer.AssertNotCalled(t, "PageCount")
}

func TestNormalize_JPEGKeepsFormat(t *testing.T) {
	renderer := new(mocks.MockPageRenderer)
	n := normalizer.New(renderer, testPipelineConfig())

	pages, err := n.Normalize(context.Background(), imagePayload(domain.FileTypeJPG, []byte{0xFF, 0xD8}))

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, domain.FileTypeJPG, pages[0].Format)
}

func TestNormalize_PDFPagesLandInOrder(t *testing.T) {
	renderer := new(mocks.MockPageRenderer)
	data := []byte("%PDF-1.4 three pages")

	renderer.On("PageCount", mock.Anything, data).Return(3, nil)
	for i := 0; i < 3; i++ {
		renderer.On("RenderPage", mock.Anything, data, i, 200).
			Return([]byte(fmt.Sprintf("page-%d", i)), nil)
	}

	n := normalizer.New(renderer, testPipelineConfig())
	pages, err := n.Normalize(context.Background(), imagePayload(domain.FileTypePDF, data))

	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, p := range pages {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, []byte(fmt.Sprintf("page-%d", i)), p.Image)
		assert.Equal(t, domain.FileTypePNG, p.Format)
	}
	renderer.AssertExpectations(t)
}

func TestNormalize_PDFRenderFailureReportsPageIndex(t *testing.T) {
	renderer := new(mocks.MockPageRenderer)
	data := []byte("%PDF-1.4 bad page")

	renderer.On("PageCount", mock.Anything, data).Return(2, nil)
	renderer.On("RenderPage", mock.Anything, data, 0, 200).Return([]byte("page-0"), nil)
	renderer.On("RenderPage", mock.Anything, data, 1, 200).Return(nil, errors.New("corrupt xref"))

	n := normalizer.New(renderer, testPipelineConfig())
	_, err := n.Normalize(context.Background(), imagePayload(domain.FileTypePDF, data))

	var pre *domain.PageRenderError
	require.True(t, errors.As(err, &pre))
	assert.Equal(t, 1, pre.PageIndex)
}

func TestNormalize_PDFPageCountFailure(t *testing.T) {
	renderer := new(mocks.MockPageRenderer)
	data := []byte("not really a pdf")

	renderer.On("PageCount", mock.Anything, data).Return(0, errors.New("parse failed"))

	n := normalizer.New(renderer, testPipelineConfig())
	_, err := n.Normalize(context.Background(), imagePayload(domain.FileTypePDF, data))

	var pre *domain.PageRenderError
	assert.True(t, errors.As(err, &pre))
}

func TestNormalize_PDFZeroPages(t *testing.T) {
	renderer := new(mocks.MockPageRenderer)
	data := []byte("%PDF-1.4 empty")

	renderer.On("PageCount", mock.Anything, data).Return(0, nil)

	n := normalizer.New(renderer, testPipelineConfig())
	_, err := n.Normalize(context.Background(), imagePayload(domain.FileTypePDF, data))

	assert.ErrorIs(t, err, domain.ErrEmptyPayload)
}

func TestNormalize_PDFCapsAtMaxPages(t *testing.T) {
	cfg := testPipelineConfig()
	cfg.MaxPages = 2

	renderer := new(mocks.MockPageRenderer)
	data := []byte("%PDF-1.4 long")

	renderer.On("PageCount", mock.Anything, data).Return(10, nil)
	renderer.On("RenderPage", mock.Anything, data, 0, 200).Return([]byte("page-0"), nil)
	renderer.On("RenderPage", mock.Anything, data, 1, 200).Return([]byte("page-1"), nil)

	n := normalizer.New(renderer, cfg)
	pages, err := n.Normalize(context.Background(), imagePayload(domain.FileTypePDF, data))

	require.NoError(t, err)
	assert.Len(t, pages, 2)
	renderer.AssertNotCalled(t, "RenderPage", mock.Anything, data, 2, 200)
}

func TestNormalize_DeterministicAcrossRuns(t *testing.T) {
	renderer := new(mocks.MockPageRenderer)
	data := []byte("%PDF-1.4 stable")

	renderer.On("PageCount", mock.Anything, data).Return(4, nil)
	for i := 0; i < 4; i++ {
		renderer.On("RenderPage", mock.Anything, data, i, 200).
			Return([]byte(fmt.Sprintf("page-%d", i)), nil)
	}

	n := normalizer.New(renderer, testPipelineConfig())

	first, err := n.Normalize(context.Background(), imagePayload(domain.FileTypePDF, data))
	require.NoError(t, err)
	second, err := n.Normalize(context.Background(), imagePayload(domain.FileTypePDF, data))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
