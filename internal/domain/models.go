package domain

// DocumentReference points at exactly one source of document bytes.
// Construct with one of the New*Reference helpers so Source stays consistent.
type DocumentReference struct {
	Source   SourceType
	Data     []byte
	Filename string
	URL      string
	Path     string
	// DedicatedIngest marks URLs submitted through the ingestion endpoint,
	// which runs under the larger download ceiling.
	DedicatedIngest bool
}

// NewFileReference wraps already-uploaded bytes with their declared filename.
func NewFileReference(data []byte, filename string) DocumentReference {
	return DocumentReference{Source: SourceFile, Data: data, Filename: filename}
}

// NewURLReference wraps a remote document URL fetched under the generic
// size ceiling.
func NewURLReference(url string) DocumentReference {
	return DocumentReference{Source: SourceURL, URL: url}
}

// NewIngestURLReference wraps a remote document URL fetched under the
// dedicated ingestion ceiling.
func NewIngestURLReference(url string) DocumentReference {
	return DocumentReference{Source: SourceURL, URL: url, DedicatedIngest: true}
}

// NewPathReference wraps a local filesystem path.
func NewPathReference(path string) DocumentReference {
	return DocumentReference{Source: SourcePath, Path: path}
}

// ValidatedPayload holds sniffed, size-checked document bytes.
// MIMEType is always derived from content, never from the caller's
// extension or Content-Type header alone.
type ValidatedPayload struct {
	Data              []byte
	MIMEType          string
	FileType          FileType
	SizeBytes         int64
	DeclaredExtension string
	SniffDegraded     bool
}

// Page is one rasterized page of a validated document. Index is 0-based
// and stable across runs on identical input. Text carries the PDF's
// embedded text layer when one was available and usable; empty otherwise.
type Page struct {
	Index  int
	Image  []byte
	Format FileType
	Text   string
}

// ExtractedField is a single value produced by an extraction tier,
// keyed by field name in the enclosing map.
type ExtractedField struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// DocumentResult is one logical document's extracted output. A single
// input may yield several results when page content changes document type.
type DocumentResult struct {
	DocumentType     string                    `json:"document_type"`
	Fields           map[string]ExtractedField `json:"fields"`
	ExtractionMethod ExtractionMethod          `json:"extraction_method"`
	ExtractionStatus ExtractionStatus          `json:"extraction_status"`
	PageCount        int                       `json:"page_count"`
	ConfidenceScore  float64                   `json:"confidence_score"`
}

// RelatedFieldPair records two canonical fields with a known semantic link.
type RelatedFieldPair struct {
	Field1            string  `json:"field1"`
	Field2            string  `json:"field2"`
	RelationshipScore float64 `json:"relationship_score"`
}

// CategorizedOutput is the categorized projection of a document's field
// map. It is derived without mutating the source fields.
type CategorizedOutput struct {
	Fields            map[string]ExtractedField            `json:"fields"`
	CategorizedFields map[string]map[string]ExtractedField `json:"categorized_fields"`
	PrimaryFields     map[string]ExtractedField            `json:"primary_fields"`
	RelatedFields     []RelatedFieldPair                   `json:"related_fields"`
}

// DocumentEntry pairs one logical document's categorized data with its outcome.
type DocumentEntry struct {
	ExtractionStatus ExtractionStatus  `json:"extraction_status"`
	Data             CategorizedOutput `json:"data"`
}

// ResponseMetadata describes the request that produced a response.
type ResponseMetadata struct {
	SourceType       SourceType `json:"source_type"`
	PageCount        int        `json:"page_count"`
	ProcessingTimeMS int64      `json:"processing_time_ms"`
	SniffDegraded    bool       `json:"sniff_degraded,omitempty"`
}

// ExtractionResponse is the full extraction contract returned to callers.
type ExtractionResponse struct {
	Documents []DocumentEntry  `json:"documents"`
	Metadata  ResponseMetadata `json:"metadata"`
}

// FlatResult is the single-record projection for callers that want one
// canonical document instead of a category breakdown. Keys are
// document_type, the flattened core field values, extraction_method and
// confidence_score.
type FlatResult map[string]any
