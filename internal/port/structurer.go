package port

import (
	"context"

	"docsift/internal/domain"
)

// TextInput carries OCR or text-layer content for LLM structuring.
type TextInput struct {
	Text             string
	DocumentTypeHint string
}

// ImageInput carries an encoded page image for vision structuring.
type ImageInput struct {
	Image  []byte
	Format domain.FileType
}

// StructuredResult contains the field map produced by an LLM structuring call.
type StructuredResult struct {
	DocumentType  string
	Fields        map[string]domain.ExtractedField
	ModelUsed     string
	LowConfidence bool // provider declared its own output unreliable
}

// TextStructurer abstracts LLM-based field extraction from page text.
type TextStructurer interface {
	StructureText(ctx context.Context, input TextInput) (*StructuredResult, error)
}

// VisionStructurer abstracts LLM-based field extraction directly from a page image.
type VisionStructurer interface {
	StructureImage(ctx context.Context, input ImageInput) (*StructuredResult, error)
}

// DocumentStructurer combines both extraction tiers of a single provider.
type DocumentStructurer interface {
	TextStructurer
	VisionStructurer
}
