package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsift/internal/domain"
)

func sampleEntry(status domain.ExtractionStatus) domain.DocumentEntry {
	return domain.DocumentEntry{
		ExtractionStatus: status,
		Data: domain.CategorizedOutput{
			Fields: map[string]domain.ExtractedField{
				"document_type":   {Value: "international_passport", Confidence: 0.85},
				"passport_number": {Value: "A01234567", Confidence: 0.9},
				"first_name":      {Value: "JANE", Confidence: 0.8},
			},
			CategorizedFields: map[string]map[string]domain.ExtractedField{
				"personal_information": {
					"first_name": {Value: "JANE", Confidence: 0.8},
				},
				"identification_documents": {
					"passport_number": {Value: "A01234567", Confidence: 0.9},
				},
				"document_information": {
					"document_type": {Value: "international_passport", Confidence: 0.85},
				},
			},
		},
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 7)
	assert.Equal(t, "Document", row[0])
	assert.Equal(t, "Confidence", row[6])
}

func TestWriteResponse_RowOrdering(t *testing.T) {
	resp := &domain.ExtractionResponse{
		Documents: []domain.DocumentEntry{sampleEntry(domain.StatusSuccess)},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteResponse(resp))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Categories sorted lexically, fields sorted within each category.
	assert.Equal(t, []string{"1", "international_passport", "success", "document_information", "document_type", "international_passport", "0.85"}, rows[0])
	assert.Equal(t, []string{"1", "international_passport", "success", "identification_documents", "passport_number", "A01234567", "0.90"}, rows[1])
	assert.Equal(t, []string{"1", "international_passport", "success", "personal_information", "first_name", "JANE", "0.80"}, rows[2])
}

func TestWriteResponse_MultipleDocuments(t *testing.T) {
	resp := &domain.ExtractionResponse{
		Documents: []domain.DocumentEntry{
			sampleEntry(domain.StatusSuccess),
			sampleEntry(domain.StatusPartial),
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteResponse(resp))
	w.Flush()

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "1", rows[0][0])
	assert.Equal(t, "2", rows[3][0])
	assert.Equal(t, "partial", rows[3][2])
}

func TestWriteResponse_NilValue(t *testing.T) {
	resp := &domain.ExtractionResponse{
		Documents: []domain.DocumentEntry{
			{
				ExtractionStatus: domain.StatusPartial,
				Data: domain.CategorizedOutput{
					CategorizedFields: map[string]map[string]domain.ExtractedField{
						"other_information": {
							"remarks": {Value: nil, Confidence: 0.7},
						},
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteResponse(resp))
	w.Flush()

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0][5])
	// Document type column is empty when the field map lacks it.
	assert.Equal(t, "", rows[0][1])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "passport scan", "passport_scan"},
		{"extension dot replaced", "passport.pdf", "passport_pdf"},
		{"special chars", "ID Card / Front (2024)", "ID_Card_Front_2024"},
		{"hyphens and underscores preserved", "my-doc_2025", "my-doc_2025"},
		{"consecutive underscores collapsed", "scan___final", "scan_final"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	today := time.Now().Format("2006-01-02")

	assert.Equal(t, "passport_scan_"+today+".csv", BuildFilename("passport scan", "csv"))
	assert.Equal(t, "extraction_"+today+".xlsx", BuildFilename("", "xlsx"))
	assert.Equal(t, "extraction_"+today+".csv", BuildFilename("///", "csv"))
}
