package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"docsift/internal/domain"
)

// verificationPenalty halves the confidence of a field whose value cannot
// be located in the page's source text.
const verificationPenalty = 0.5

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	digitRunRe   = regexp.MustCompile(`\d{2,}`)
	digitsRe     = regexp.MustCompile(`\d+`)
)

// verifyAgainstText downscales the confidence of fields whose values do not
// appear in the source text. Only meaningful when text came from the same
// page the fields were extracted from; callers skip it for vision-only
// pages with no OCR text.
func verifyAgainstText(fields map[string]domain.ExtractedField, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	cleanText := whitespaceRe.ReplaceAllString(strings.ToLower(text), " ")
	noSpaceText := strings.ReplaceAll(cleanText, " ", "")

	for name, field := range fields {
		value, ok := stringValue(field.Value)
		if !ok || value == "" {
			continue
		}
		if !valueInText(name, value, cleanText, noSpaceText) {
			field.Confidence *= verificationPenalty
			fields[name] = field
		}
	}
}

func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case float64, int, bool:
		return fmt.Sprintf("%v", s), true
	default:
		return "", false
	}
}

func valueInText(name, value, cleanText, noSpaceText string) bool {
	cleanValue := whitespaceRe.ReplaceAllString(strings.ToLower(value), " ")
	if strings.Contains(cleanText, cleanValue) {
		return true
	}
	if strings.Contains(noSpaceText, strings.ReplaceAll(cleanValue, " ", "")) {
		return true
	}

	lowerName := strings.ToLower(name)

	// Dates survive format drift when all their numeric components appear.
	if containsAny(lowerName, "date", "expiry", "issue", "birth") {
		parts := digitsRe.FindAllString(cleanValue, -1)
		if len(parts) > 0 && allIn(parts, cleanText) {
			return true
		}
	}

	// Names match part-by-part; OCR often reorders or splits them.
	if containsAny(lowerName, "name", "person") {
		parts := strings.Fields(cleanValue)
		if len(parts) > 1 {
			significant := parts[:0]
			for _, p := range parts {
				if len(p) >= 2 {
					significant = append(significant, p)
				}
			}
			if len(significant) > 0 && allIn(significant, cleanText) {
				return true
			}
		}
	}

	// Identifiers match on their digit runs.
	if containsAny(lowerName, "number", "id", "code") {
		runs := digitRunRe.FindAllString(cleanValue, -1)
		if len(runs) > 0 && allIn(runs, cleanText) {
			return true
		}
	}

	return false
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func allIn(parts []string, text string) bool {
	for _, p := range parts {
		if !strings.Contains(text, p) {
			return false
		}
	}
	return true
}
