package fields

import (
	"sort"

	"docsift/internal/domain"
)

// protectedFields survive confidence filtering regardless of score.
var protectedFields = map[string]bool{
	"document_type":     true,
	"extraction_method": true,
}

// Options control categorization thresholds. Zero values fall back to the
// defaults the pipeline ships with.
type Options struct {
	DocumentType          string
	ConfidenceFloor       float64
	MaxPrimaryPerCategory int
}

const (
	defaultConfidenceFloor = 0.6
	defaultMaxPrimary      = 2
)

// Categorize turns a raw extracted field map into the categorized
// projection: canonical names, date values normalized to ISO form,
// low-confidence fields dropped, fields grouped into semantic categories,
// primary fields ranked, and related pairs detected.
//
// Pure function: the input map is never mutated, and identical inputs
// always produce deeply equal output.
func Categorize(raw map[string]domain.ExtractedField, opts Options) domain.CategorizedOutput {
	floor := opts.ConfidenceFloor
	if floor <= 0 {
		floor = defaultConfidenceFloor
	}
	maxPrimary := opts.MaxPrimaryPerCategory
	if maxPrimary <= 0 {
		maxPrimary = defaultMaxPrimary
	}

	canonical := canonicalizeFields(raw)

	filtered := make(map[string]domain.ExtractedField, len(canonical))
	for name, field := range canonical {
		if field.Confidence < floor && !protectedFields[name] {
			continue
		}
		filtered[name] = field
	}

	categorized := make(map[string]map[string]domain.ExtractedField)
	for name, field := range filtered {
		cat := CategoryFor(name)
		if categorized[cat] == nil {
			categorized[cat] = make(map[string]domain.ExtractedField)
		}
		categorized[cat][name] = field
	}

	names := make([]string, 0, len(filtered))
	for name := range filtered {
		names = append(names, name)
	}

	return domain.CategorizedOutput{
		Fields:            filtered,
		CategorizedFields: categorized,
		PrimaryFields:     SelectPrimaryFields(categorized, opts.DocumentType, maxPrimary),
		RelatedFields:     filterRelated(MatchRelatedFields(names)),
	}
}

// canonicalizeFields maps raw names to canonical ones and normalizes date
// values. Raw names are visited in sorted order so a canonical-name
// collision always resolves the same way: the higher-confidence value wins,
// with the lexically earlier raw name winning exact ties.
func canonicalizeFields(raw map[string]domain.ExtractedField) map[string]domain.ExtractedField {
	rawNames := make([]string, 0, len(raw))
	for name := range raw {
		rawNames = append(rawNames, name)
	}
	sort.Strings(rawNames)

	out := make(map[string]domain.ExtractedField, len(raw))
	for _, rawName := range rawNames {
		field := raw[rawName]
		name := Canonicalize(rawName)
		if s, ok := field.Value.(string); ok && isDateField(name) {
			field.Value = NormalizeDate(s)
		}
		if existing, ok := out[name]; ok && existing.Confidence >= field.Confidence {
			continue
		}
		out[name] = field
	}
	return out
}
