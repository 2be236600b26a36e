package fields

import (
	"regexp"
	"strings"
)

// documentTypePattern scores OCR text against one known document type.
type documentTypePattern struct {
	name       string
	confidence float64
	patterns   []*regexp.Regexp
	required   []*regexp.Regexp
	optional   []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

var documentTypePatterns = []documentTypePattern{
	// Identity documents
	{
		name:       "international_passport",
		confidence: 0.95,
		patterns:   compileAll(`passport`, `international.*passport`, `p<[a-z]{3}`),
		required:   compileAll(`passport`),
		optional:   compileAll(`nationality`, `document.*number`, `date.*birth`),
	},
	{
		name:       "national_id_card",
		confidence: 0.90,
		patterns:   compileAll(`national.*id`, `identity.*card`, `nin`),
		required:   compileAll(`national`, `id`),
		optional:   compileAll(`identification`, `number`),
	},
	{
		name:       "drivers_license",
		confidence: 0.90,
		patterns:   compileAll(`driver.*license`, `driving.*license`, `license.*class`),
		required:   compileAll(`license`),
		optional:   compileAll(`driver`, `class`, `vehicle`),
	},
	{
		name:       "voter_registration_card",
		confidence: 0.90,
		patterns:   compileAll(`voter.*card`, `voter.*registration`, `polling.*unit`),
		required:   compileAll(`voter`),
		optional:   compileAll(`registration`, `card`, `polling`),
	},

	// Legal documents
	{
		name:       "land_use_restriction_agreement",
		confidence: 0.95,
		patterns:   compileAll(`land.*use.*restriction`, `land.*use.*agreement`, `restriction.*agreement`),
		required:   compileAll(`land`, `restriction`),
		optional:   compileAll(`agreement`, `grantor`, `grantee`),
	},
	{
		name:       "contract",
		confidence: 0.85,
		patterns:   compileAll(`contract`, `agreement`, `whereas`, `party.*agrees`),
		required:   compileAll(`contract|agreement`),
		optional:   compileAll(`parties`, `terms`, `conditions`),
	},
	{
		name:       "lease_agreement",
		confidence: 0.90,
		patterns:   compileAll(`lease.*agreement`, `rental.*agreement`, `tenant.*landlord`),
		required:   compileAll(`lease`),
		optional:   compileAll(`tenant`, `landlord`, `rent`),
	},

	// Certificates
	{
		name:       "birth_certificate",
		confidence: 0.95,
		patterns:   compileAll(`birth.*certificate`, `certificate.*birth`),
		required:   compileAll(`birth`, `certificate`),
		optional:   compileAll(`born`, `parents`),
	},
	{
		name:       "marriage_certificate",
		confidence: 0.95,
		patterns:   compileAll(`marriage.*certificate`, `certificate.*marriage`),
		required:   compileAll(`marriage`, `certificate`),
		optional:   compileAll(`spouse`, `married`),
	},
	{
		name:       "academic_certificate",
		confidence: 0.90,
		patterns:   compileAll(`certificate.*completion`, `diploma`, `degree.*certificate`),
		required:   compileAll(`certificate`),
		optional:   compileAll(`institution`, `course`, `grade`),
	},

	// Financial documents
	{
		name:       "invoice",
		confidence: 0.90,
		patterns:   compileAll(`invoice`, `bill.*to`, `amount.*due`),
		required:   compileAll(`invoice`),
		optional:   compileAll(`amount`, `due`, `total`),
	},
	{
		name:       "receipt",
		confidence: 0.85,
		patterns:   compileAll(`receipt`, `payment.*received`, `thank.*you.*purchase`),
		required:   compileAll(`receipt`),
		optional:   compileAll(`payment`, `total`, `change`),
	},

	// Medical and government documents
	{
		name:       "medical_certificate",
		confidence: 0.90,
		patterns:   compileAll(`medical.*certificate`, `health.*certificate`, `fit.*work`),
		required:   compileAll(`medical`),
		optional:   compileAll(`certificate`, `health`, `doctor`),
	},
	{
		name:       "permit",
		confidence: 0.85,
		patterns:   compileAll(`permit`, `authorization`, `license.*operate`),
		required:   compileAll(`permit`),
		optional:   compileAll(`authorization`, `valid`, `expires`),
	},
}

var genericTypeFallbacks = []struct {
	re       *regexp.Regexp
	docType  string
	docScore float64
}{
	{regexp.MustCompile(`agreement|contract`), "legal_agreement", 0.7},
	{regexp.MustCompile(`certificate`), "certificate", 0.7},
	{regexp.MustCompile(`invoice|bill|payment`), "financial_document", 0.7},
	{regexp.MustCompile(`report|summary|analysis`), "report", 0.7},
	{regexp.MustCompile(`letter|correspondence`), "letter", 0.7},
	{regexp.MustCompile(`form|application`), "form", 0.7},
}

// DetectDocumentType infers the document type from OCR text. Required
// elements gate the match; pattern and optional-element hit ratios refine
// the score. Unmatched text degrades to a generic type or unknown_document.
func DetectDocumentType(text string) (string, float64) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return "unknown_document", 0.5
	}

	bestName, bestScore := "", 0.0
	for _, p := range documentTypePatterns {
		score := patternScore(lower, p)
		if score > bestScore {
			bestName, bestScore = p.name, score
		}
	}
	if bestName != "" {
		return bestName, bestScore
	}

	for _, g := range genericTypeFallbacks {
		if g.re.MatchString(lower) {
			return g.docType, g.docScore
		}
	}
	return "unknown_document", 0.5
}

func patternScore(text string, p documentTypePattern) float64 {
	for _, req := range p.required {
		if !req.MatchString(text) {
			return 0
		}
	}
	score := 0.6

	matches := 0
	for _, re := range p.patterns {
		if re.MatchString(text) {
			matches++
		}
	}
	if matches > 0 {
		score += 0.3 * float64(matches) / float64(len(p.patterns))
	}

	if len(p.optional) > 0 {
		found := 0
		for _, re := range p.optional {
			if re.MatchString(text) {
				found++
			}
		}
		score += 0.1 * float64(found) / float64(len(p.optional))
	}

	score *= p.confidence
	if score > 1 {
		score = 1
	}
	return score
}
