package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docsift/internal/domain"
)

func TestWriteXLSX_SheetsAndRows(t *testing.T) {
	resp := &domain.ExtractionResponse{
		Documents: []domain.DocumentEntry{sampleEntry(domain.StatusSuccess)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, resp))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Fields", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Fields")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, columns, rows[0])
	assert.Equal(t, "document_type", rows[1][4])
	assert.Equal(t, "passport_number", rows[2][4])
	assert.Equal(t, "first_name", rows[3][4])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "international_passport", summary[1][1])
	assert.Equal(t, "success", summary[1][2])
	assert.Equal(t, "3", summary[1][3])
}

func TestWriteXLSX_EmptyResponse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, &domain.ExtractionResponse{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Fields")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
