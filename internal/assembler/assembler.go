package assembler

import (
	"sort"
	"time"

	"docsift/internal/config"
	"docsift/internal/domain"
	"docsift/internal/fields"
)

// Assembler shapes merged document results into the response contract.
type Assembler struct {
	confidenceFloor       float64
	maxPrimaryPerCategory int
}

// New creates an Assembler from the pipeline configuration.
func New(cfg config.PipelineConfig) *Assembler {
	return &Assembler{
		confidenceFloor:       cfg.ConfidenceFloor,
		maxPrimaryPerCategory: cfg.MaxPrimaryPerCategory,
	}
}

// Assemble categorizes each document's fields and packages them with
// request metadata. Documents keep their input order.
func (a *Assembler) Assemble(docs []domain.DocumentResult, source domain.SourceType, pageCount int, started time.Time) *domain.ExtractionResponse {
	entries := make([]domain.DocumentEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, domain.DocumentEntry{
			ExtractionStatus: doc.ExtractionStatus,
			Data: fields.Categorize(withDocumentMeta(doc), fields.Options{
				DocumentType:          doc.DocumentType,
				ConfidenceFloor:       a.confidenceFloor,
				MaxPrimaryPerCategory: a.maxPrimaryPerCategory,
			}),
		})
	}
	return &domain.ExtractionResponse{
		Documents: entries,
		Metadata: domain.ResponseMetadata{
			SourceType:       source,
			PageCount:        pageCount,
			ProcessingTimeMS: time.Since(started).Milliseconds(),
		},
	}
}

// withDocumentMeta folds the document-level type and method into the field
// map so they survive categorization and land in document_information.
func withDocumentMeta(doc domain.DocumentResult) map[string]domain.ExtractedField {
	merged := make(map[string]domain.ExtractedField, len(doc.Fields)+2)
	for name, f := range doc.Fields {
		merged[name] = f
	}
	if doc.DocumentType != "" {
		merged["document_type"] = domain.ExtractedField{Value: doc.DocumentType, Confidence: doc.ConfidenceScore}
	}
	if doc.ExtractionMethod != "" {
		merged["extraction_method"] = domain.ExtractedField{Value: string(doc.ExtractionMethod), Confidence: 1}
	}
	return merged
}

// Flatten produces the single-document projection: the best document's
// core values at the top level. Best means highest extraction status,
// then largest field count, then input order.
func Flatten(docs []domain.DocumentResult, meta domain.ResponseMetadata) domain.FlatResult {
	flat := domain.FlatResult{
		"source_type":        meta.SourceType,
		"page_count":         meta.PageCount,
		"processing_time_ms": meta.ProcessingTimeMS,
	}
	if len(docs) == 0 {
		flat["document_type"] = "unknown_document"
		return flat
	}

	best := docs[0]
	for _, doc := range docs[1:] {
		if statusRank(doc.ExtractionStatus) > statusRank(best.ExtractionStatus) ||
			(statusRank(doc.ExtractionStatus) == statusRank(best.ExtractionStatus) && len(doc.Fields) > len(best.Fields)) {
			best = doc
		}
	}

	flat["document_type"] = best.DocumentType
	flat["extraction_method"] = best.ExtractionMethod
	flat["extraction_status"] = best.ExtractionStatus
	flat["confidence_score"] = best.ConfidenceScore

	names := make([]string, 0, len(best.Fields))
	for name := range best.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		canonical := fields.Canonicalize(name)
		if _, taken := flat[canonical]; taken {
			continue
		}
		flat[canonical] = best.Fields[name].Value
	}
	return flat
}

func statusRank(s domain.ExtractionStatus) int {
	switch s {
	case domain.StatusSuccess:
		return 2
	case domain.StatusPartial:
		return 1
	default:
		return 0
	}
}
