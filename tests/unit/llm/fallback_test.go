package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docsift/internal/domain"
	"docsift/internal/llm"
	"docsift/internal/port"
	"docsift/mocks"
)

func fallbackResult(model string) *port.StructuredResult {
	return &port.StructuredResult{
		DocumentType: "passport",
		Fields: map[string]domain.ExtractedField{
			"document_number": {Value: "A01234567", Confidence: 0.9},
			"surname":         {Value: "DOE", Confidence: 0.9},
		},
		ModelUsed: model,
	}
}

func textInput() port.TextInput {
	return port.TextInput{Text: "PASSPORT\nDOE\nA01234567", DocumentTypeHint: "passport"}
}

func TestFallbackStructurer_FirstSucceeds(t *testing.T) {
	s1 := new(mocks.MockDocumentStructurer)
	s2 := new(mocks.MockDocumentStructurer)

	s1.On("StructureText", mock.Anything, textInput()).Return(fallbackResult("groq-model"), nil)

	fs := llm.NewFallbackStructurer(
		[]port.DocumentStructurer{s1, s2},
		[]string{"groq", "openai"},
	)

	result, err := fs.StructureText(context.Background(), textInput())

	require.NoError(t, err)
	assert.Equal(t, "groq-model", result.ModelUsed)
	s2.AssertNotCalled(t, "StructureText", mock.Anything, mock.Anything)
}

func TestFallbackStructurer_FirstFails_SecondSucceeds(t *testing.T) {
	s1 := new(mocks.MockDocumentStructurer)
	s2 := new(mocks.MockDocumentStructurer)

	s1.On("StructureText", mock.Anything, textInput()).Return(nil, errors.New("connection reset"))
	s2.On("StructureText", mock.Anything, textInput()).Return(fallbackResult("openai-model"), nil)

	fs := llm.NewFallbackStructurer(
		[]port.DocumentStructurer{s1, s2},
		[]string{"groq", "openai"},
	)

	result, err := fs.StructureText(context.Background(), textInput())

	require.NoError(t, err)
	assert.Equal(t, "openai-model", result.ModelUsed)
}

func TestFallbackStructurer_RateLimitOpensCircuit(t *testing.T) {
	s1 := new(mocks.MockDocumentStructurer)
	s2 := new(mocks.MockDocumentStructurer)

	s1.On("StructureText", mock.Anything, textInput()).
		Return(nil, llm.NewRateLimitError("groq", errors.New("429"), 60))
	s2.On("StructureText", mock.Anything, textInput()).Return(fallbackResult("openai-model"), nil)

	fs := llm.NewFallbackStructurer(
		[]port.DocumentStructurer{s1, s2},
		[]string{"groq", "openai"},
	)

	for i := 0; i < 2; i++ {
		result, err := fs.StructureText(context.Background(), textInput())
		require.NoError(t, err)
		assert.Equal(t, "openai-model", result.ModelUsed)
	}

	// The second request skips the rate-limited provider entirely.
	s1.AssertNumberOfCalls(t, "StructureText", 1)
	s2.AssertNumberOfCalls(t, "StructureText", 2)
}

func TestFallbackStructurer_AllRateLimited(t *testing.T) {
	s1 := new(mocks.MockDocumentStructurer)
	s2 := new(mocks.MockDocumentStructurer)

	s1.On("StructureText", mock.Anything, textInput()).
		Return(nil, llm.NewRateLimitError("groq", errors.New("429"), 60))
	s2.On("StructureText", mock.Anything, textInput()).
		Return(nil, llm.NewRateLimitError("openai", errors.New("429"), 30))

	fs := llm.NewFallbackStructurer(
		[]port.DocumentStructurer{s1, s2},
		[]string{"groq", "openai"},
	)

	result, err := fs.StructureText(context.Background(), textInput())

	assert.Nil(t, result)
	require.Error(t, err)
	var rlErr *llm.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallbackStructurer_AllFail(t *testing.T) {
	s1 := new(mocks.MockDocumentStructurer)
	s2 := new(mocks.MockDocumentStructurer)

	s1.On("StructureText", mock.Anything, textInput()).Return(nil, errors.New("boom"))
	s2.On("StructureText", mock.Anything, textInput()).Return(nil, errors.New("also boom"))

	fs := llm.NewFallbackStructurer(
		[]port.DocumentStructurer{s1, s2},
		[]string{"groq", "openai"},
	)

	result, err := fs.StructureText(context.Background(), textInput())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
	assert.Contains(t, err.Error(), "also boom")
}

func TestFallbackStructurer_ImagePathFallsBackToo(t *testing.T) {
	s1 := new(mocks.MockDocumentStructurer)
	s2 := new(mocks.MockDocumentStructurer)

	input := port.ImageInput{Image: []byte("png-bytes"), Format: domain.FileTypePNG}
	s1.On("StructureImage", mock.Anything, input).Return(nil, errors.New("timeout"))
	s2.On("StructureImage", mock.Anything, input).Return(fallbackResult("vision-model"), nil)

	fs := llm.NewFallbackStructurer(
		[]port.DocumentStructurer{s1, s2},
		[]string{"groq", "openai"},
	)

	result, err := fs.StructureImage(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "vision-model", result.ModelUsed)
}
