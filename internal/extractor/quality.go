package extractor

import (
	"strings"

	"docsift/internal/port"
)

// minSufficientFields is the populated-field floor below which a
// structured result fails the quality gate. Chosen over a numeric
// confidence cutoff so a sparse-but-certain result still escalates.
const minSufficientFields = 2

// usableLines counts non-blank text lines carrying at least one
// letter or digit. OCR noise lines of pure punctuation do not count.
func usableLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.IndexFunc(trimmed, func(r rune) bool {
			return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		}) >= 0 {
			count++
		}
	}
	return count
}

// sufficient is the quality gate for a tier's output: the result must not
// carry the provider's own low-confidence signal, must identify the
// document (type or document number), and must have enough populated
// fields to be worth keeping without escalation.
func sufficient(result *port.StructuredResult) bool {
	if result == nil || result.LowConfidence {
		return false
	}
	populated := 0
	for _, f := range result.Fields {
		if s, ok := f.Value.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		if f.Value == nil {
			continue
		}
		populated++
	}
	if populated < minSufficientFields {
		return false
	}
	if result.DocumentType != "" && result.DocumentType != "unknown_document" {
		return true
	}
	_, hasNumber := result.Fields["document_number"]
	return hasNumber
}
