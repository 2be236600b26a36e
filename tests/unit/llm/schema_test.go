package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsift/internal/llm"
)

func TestParseResult_Success(t *testing.T) {
	raw := `{
		"document_type": "passport",
		"fields": {
			"document_number": "A01234567",
			"surname": "DOE",
			"date_of_birth": "1990-03-15"
		},
		"confidence_scores": {
			"document_number": 0.95,
			"surname": 0.9,
			"date_of_birth": 0.85
		}
	}`

	result, err := llm.ParseResult(raw, "test-model")

	require.NoError(t, err)
	assert.Equal(t, "passport", result.DocumentType)
	assert.Equal(t, "test-model", result.ModelUsed)
	assert.False(t, result.LowConfidence)
	require.Len(t, result.Fields, 3)
	assert.Equal(t, "A01234567", result.Fields["document_number"].Value)
	assert.Equal(t, 0.95, result.Fields["document_number"].Confidence)
}

func TestParseResult_NormalizesDocumentType(t *testing.T) {
	raw := `{"document_type": " Driving License ", "fields": {"a": "1", "b": "2"}}`

	result, err := llm.ParseResult(raw, "m")

	require.NoError(t, err)
	assert.Equal(t, "driving_license", result.DocumentType)
}

func TestParseResult_MissingScoresReportZero(t *testing.T) {
	raw := `{"fields": {"surname": "DOE", "country": "FRA"}}`

	result, err := llm.ParseResult(raw, "m")

	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Fields["surname"].Confidence)
	assert.False(t, result.LowConfidence)
}

func TestParseResult_CoercesAndClampsScores(t *testing.T) {
	raw := `{"fields": {"a": "1", "b": "2", "c": "3", "d": "4"},
		"confidence_scores": {"a": "0.75", "b": 1.8, "c": -0.2, "d": "garbage"}}`

	result, err := llm.ParseResult(raw, "m")

	require.NoError(t, err)
	assert.Equal(t, 0.75, result.Fields["a"].Confidence)
	assert.Equal(t, 1.0, result.Fields["b"].Confidence)
	assert.Equal(t, 0.0, result.Fields["c"].Confidence)
	assert.Equal(t, 0.0, result.Fields["d"].Confidence)
}

func TestParseResult_LowConfidenceSignal(t *testing.T) {
	raw := `{"fields": {"a": "1", "b": "2"},
		"confidence_scores": {"a": 0.3, "b": 0.2}}`

	result, err := llm.ParseResult(raw, "m")

	require.NoError(t, err)
	assert.True(t, result.LowConfidence)
}

func TestParseResult_DropsNonScalarFields(t *testing.T) {
	raw := `{"fields": {
		"surname": "DOE",
		"given_names": "JANE",
		"mrz": ["P<FRADOE<<JANE", "A012345674FRA9003159F3001012"],
		"address": {"city": "Paris"}
	}}`

	result, err := llm.ParseResult(raw, "m")

	require.NoError(t, err)
	assert.Len(t, result.Fields, 2)
	assert.NotContains(t, result.Fields, "mrz")
	assert.NotContains(t, result.Fields, "address")
}

func TestParseResult_AllFieldsNonScalar(t *testing.T) {
	raw := `{"fields": {"address": {"city": "Paris"}}}`

	result, err := llm.ParseResult(raw, "m")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable fields")
}

func TestParseResult_EmptyFields(t *testing.T) {
	result, err := llm.ParseResult(`{"fields": {}}`, "m")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fields")
}

func TestParseResult_InvalidJSON(t *testing.T) {
	result, err := llm.ParseResult("Sure! Here is the JSON you asked for:", "m")

	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestParseResult_SurroundingWhitespace(t *testing.T) {
	result, err := llm.ParseResult("\n  {\"fields\": {\"a\": \"1\", \"b\": \"2\"}}  \n", "m")

	require.NoError(t, err)
	assert.Len(t, result.Fields, 2)
}

func TestValidateResultJSON(t *testing.T) {
	assert.NoError(t, llm.ValidateResultJSON([]byte(`{"fields": {"a": "1"}}`)))
	assert.Error(t, llm.ValidateResultJSON([]byte(`{"document_type": "passport"}`)))
	assert.Error(t, llm.ValidateResultJSON([]byte(`{"fields": {}, "confidence_scores": {"a": 2}}`)))
	assert.Error(t, llm.ValidateResultJSON([]byte(`not json`)))
}
