package extractor

import (
	"log"

	"docsift/internal/domain"
)

// mergeOutcomes groups ordered page outcomes into logical documents with a
// greedy continuity pass: a page joins the current document when its
// detected type matches, or when its field names overlap the document's
// enough to look like a continuation (front/back of the same ID). A type
// change starts a new document.
func (c *Coordinator) mergeOutcomes(outcomes []pageOutcome) []domain.DocumentResult {
	var results []domain.DocumentResult
	var current *documentGroup

	for i := range outcomes {
		o := &outcomes[i]
		if current != nil && current.continues(o, c.similarityThreshold) {
			current.add(o)
			continue
		}
		if current != nil {
			results = append(results, current.result())
		}
		current = newDocumentGroup(o)
	}
	if current != nil {
		results = append(results, current.result())
	}

	log.Printf("extractor.mergeOutcomes: %d pages grouped into %d documents", len(outcomes), len(results))
	return results
}

// documentGroup accumulates consecutive pages belonging to one logical document.
type documentGroup struct {
	docType  string
	fields   map[string]domain.ExtractedField
	method   domain.ExtractionMethod
	pages    int
	accepted int
}

func newDocumentGroup(o *pageOutcome) *documentGroup {
	g := &documentGroup{
		docType: o.docType,
		fields:  copyFields(o.fields),
		method:  o.method,
		pages:   1,
	}
	if o.state == domain.PageAccepted {
		g.accepted = 1
	}
	return g
}

// continues reports whether the page belongs to this group: matching
// document type, or field-name overlap above the similarity threshold.
func (g *documentGroup) continues(o *pageOutcome, threshold float64) bool {
	if g.docType != "" && o.docType != "" {
		if g.docType == o.docType {
			return true
		}
		return fieldOverlap(g.fields, o.fields) >= threshold
	}
	// A typeless page (failed extraction, blank back side) rides along
	// only when its fields resemble the current document's.
	if len(o.fields) == 0 && o.docType == "" {
		return false
	}
	return fieldOverlap(g.fields, o.fields) >= threshold
}

func (g *documentGroup) add(o *pageOutcome) {
	g.pages++
	if o.state == domain.PageAccepted {
		g.accepted++
	}
	if g.docType == "" {
		g.docType = o.docType
	}
	// Field union; the higher-confidence value wins a collision.
	for name, f := range o.fields {
		if existing, ok := g.fields[name]; !ok || f.Confidence > existing.Confidence {
			g.fields[name] = f
		}
	}
	if g.method == "" {
		g.method = o.method
	}
}

func (g *documentGroup) result() domain.DocumentResult {
	status := domain.StatusFailed
	switch {
	case g.accepted == g.pages:
		status = domain.StatusSuccess
	case g.accepted > 0:
		status = domain.StatusPartial
	}

	docType := g.docType
	if docType == "" {
		docType = "unknown_document"
	}

	return domain.DocumentResult{
		DocumentType:     docType,
		Fields:           g.fields,
		ExtractionMethod: g.method,
		ExtractionStatus: status,
		PageCount:        g.pages,
		ConfidenceScore:  meanConfidence(g.fields),
	}
}

// fieldOverlap is the Jaccard similarity of two field-name sets.
func fieldOverlap(a, b map[string]domain.ExtractedField) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for name := range a {
		if _, ok := b[name]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func copyFields(in map[string]domain.ExtractedField) map[string]domain.ExtractedField {
	out := make(map[string]domain.ExtractedField, len(in))
	for name, f := range in {
		out[name] = f
	}
	return out
}

func meanConfidence(in map[string]domain.ExtractedField) float64 {
	if len(in) == 0 {
		return 0
	}
	var sum float64
	for _, f := range in {
		sum += f.Confidence
	}
	return sum / float64(len(in))
}
