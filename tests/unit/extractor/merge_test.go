package extractor_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docsift/internal/domain"
	"docsift/internal/extractor"
	"docsift/internal/port"
	"docsift/mocks"
)

const passportBackText = `INTERNATIONAL PASSPORT
Passport Number: A01234567
Issuing Authority: IMMIGRATION SERVICE
Date of Issue: 10 JAN 2020`

const invoiceText = `INVOICE #2041
Bill To: Jane Doe
Amount Due: 450.00
Total: 450.00`

func textMatching(substr string) interface{} {
	return mock.MatchedBy(func(in port.TextInput) bool {
		return strings.Contains(in.Text, substr)
	})
}

func TestExtract_ConsecutiveSameTypePagesMergeIntoOneDocument(t *testing.T) {
	ocr := new(mocks.MockOCREngine)
	structurer := new(mocks.MockDocumentStructurer)

	front := []byte("passport-front")
	back := []byte("passport-back")

	ocr.On("Recognize", mock.Anything, front, domain.FileTypePNG).Return(passportText, nil)
	ocr.On("Recognize", mock.Anything, back, domain.FileTypePNG).Return(passportBackText, nil)

	structurer.On("StructureText", mock.Anything, textMatching("Date of Birth")).
		Return(passportResult(), nil)
	structurer.On("StructureText", mock.Anything, textMatching("Issuing Authority")).
		Return(&port.StructuredResult{
			DocumentType: "international_passport",
			Fields: map[string]domain.ExtractedField{
				"passport_number": {Value: "A01234567", Confidence: 0.95},
				"issue_date":      {Value: "10 JAN 2020"},
			},
		}, nil)

	cfg := testPipelineConfig()
	cfg.PageConcurrency = 1

	c := extractor.NewCoordinator(ocr, structurer, cfg)
	results, err := c.Extract(context.Background(), []domain.Page{
		{Index: 0, Image: front, Format: domain.FileTypePNG},
		{Index: 1, Image: back, Format: domain.FileTypePNG},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "international_passport", results[0].DocumentType)
	assert.Equal(t, 2, results[0].PageCount)
	assert.Equal(t, domain.StatusSuccess, results[0].ExtractionStatus)
	// Union of both pages' fields, higher confidence winning the collision.
	assert.Contains(t, results[0].Fields, "first_name")
	assert.Contains(t, results[0].Fields, "issue_date")
	assert.Equal(t, 0.95, results[0].Fields["passport_number"].Confidence)
}

func TestExtract_TypeChangeStartsNewDocument(t *testing.T) {
	ocr := new(mocks.MockOCREngine)
	structurer := new(mocks.MockDocumentStructurer)

	frontImg := []byte("passport-front")
	backImg := []byte("passport-back")
	invoiceImg := []byte("invoice-page")

	ocr.On("Recognize", mock.Anything, frontImg, domain.FileTypePNG).Return(passportText, nil)
	ocr.On("Recognize", mock.Anything, backImg, domain.FileTypePNG).Return(passportBackText, nil)
	ocr.On("Recognize", mock.Anything, invoiceImg, domain.FileTypePNG).Return(invoiceText, nil)

	structurer.On("StructureText", mock.Anything, textMatching("Date of Birth")).
		Return(passportResult(), nil)
	structurer.On("StructureText", mock.Anything, textMatching("Issuing Authority")).
		Return(&port.StructuredResult{
			DocumentType: "international_passport",
			Fields: map[string]domain.ExtractedField{
				"passport_number": {Value: "A01234567"},
				"issue_date":      {Value: "10 JAN 2020"},
			},
		}, nil)
	structurer.On("StructureText", mock.Anything, textMatching("INVOICE")).
		Return(&port.StructuredResult{
			DocumentType: "invoice",
			Fields: map[string]domain.ExtractedField{
				"document_number": {Value: "2041"},
				"total_amount":    {Value: "450.00"},
			},
		}, nil)

	cfg := testPipelineConfig()
	cfg.PageConcurrency = 1

	c := extractor.NewCoordinator(ocr, structurer, cfg)
	results, err := c.Extract(context.Background(), []domain.Page{
		{Index: 0, Image: frontImg, Format: domain.FileTypePNG},
		{Index: 1, Image: backImg, Format: domain.FileTypePNG},
		{Index: 2, Image: invoiceImg, Format: domain.FileTypePNG},
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "international_passport", results[0].DocumentType)
	assert.Equal(t, "invoice", results[1].DocumentType)
	assert.Equal(t, 2, results[0].PageCount)
	assert.Equal(t, 1, results[1].PageCount)
}

func TestExtract_MixedOutcomeGroupIsPartial(t *testing.T) {
	ocr := new(mocks.MockOCREngine)
	structurer := new(mocks.MockDocumentStructurer)

	goodImg := []byte("good-page")
	weakImg := []byte("weak-page")

	ocr.On("Recognize", mock.Anything, goodImg, domain.FileTypePNG).Return(passportText, nil)
	ocr.On("Recognize", mock.Anything, weakImg, domain.FileTypePNG).Return(passportBackText, nil)

	structurer.On("StructureText", mock.Anything, textMatching("Date of Birth")).
		Return(passportResult(), nil)
	// The second page fails both tiers but still reports the type from the
	// text tier, so it rides along as a partial page.
	insufficient := &port.StructuredResult{
		DocumentType: "international_passport",
		Fields: map[string]domain.ExtractedField{
			"passport_number": {Value: "A01234567"},
		},
	}
	structurer.On("StructureText", mock.Anything, textMatching("Issuing Authority")).
		Return(insufficient, nil)
	structurer.On("StructureImage", mock.Anything, mock.Anything).Return(insufficient, nil)

	cfg := testPipelineConfig()
	cfg.PageConcurrency = 1

	c := extractor.NewCoordinator(ocr, structurer, cfg)
	results, err := c.Extract(context.Background(), []domain.Page{
		{Index: 0, Image: goodImg, Format: domain.FileTypePNG},
		{Index: 1, Image: weakImg, Format: domain.FileTypePNG},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusPartial, results[0].ExtractionStatus)
	assert.Equal(t, 2, results[0].PageCount)
}
