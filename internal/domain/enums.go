package domain

// FileType represents the accepted document formats.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
// image/jpg is a common server mislabel and treated as an alias.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/jpg":       FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// SourceType identifies where a document reference originated.
type SourceType string

const (
	SourceFile SourceType = "file"
	SourceURL  SourceType = "url"
	SourcePath SourceType = "path"
)

// ExtractionMethod identifies which tier produced a document's fields.
type ExtractionMethod string

const (
	MethodOCRLLM    ExtractionMethod = "ocr_llm"
	MethodVisionLLM ExtractionMethod = "vision_llm"
)

// ExtractionStatus classifies the outcome for one logical document.
type ExtractionStatus string

const (
	StatusSuccess ExtractionStatus = "success"
	StatusPartial ExtractionStatus = "partial"
	StatusFailed  ExtractionStatus = "failed"
)

// PageState tracks a page through the tiered extraction pipeline.
type PageState string

const (
	PagePending          PageState = "pending"
	PageOCRAttempted     PageState = "ocr_attempted"
	PageVisionAttempted  PageState = "vision_fallback_attempted"
	PageAccepted         PageState = "accepted"
	PageFailed           PageState = "failed"
)
