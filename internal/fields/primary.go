package fields

import (
	"sort"
	"strings"

	"docsift/internal/domain"
)

// priorityFields lists the canonical names that matter most per category,
// most important first. Position drives the importance weight.
var priorityFields = map[string][]string{
	CategoryPersonal:       {"full_name", "first_name", "last_name", "date_of_birth", "gender"},
	CategoryIdentification: {"identification_number", "passport_number", "social_security_number", "drivers_license_number"},
	CategoryContact:        {"email", "phone_number", "mobile_number"},
	CategoryAddress:        {"address", "street_address", "city", "state", "zip_code", "country"},
	CategoryFinancial:      {"total_amount", "payment_amount", "fee_amount", "price_amount"},
	CategoryDates:          {"issue_date", "effective_date", "expiration_date", "signing_date"},
	CategoryDocument:       {"document_type", "document_number", "document_title", "reference_number"},
	CategoryParties:        {"grantor", "grantee", "buyer", "seller", "owner", "tenant"},
	CategoryProperty:       {"property_address", "property_description", "property_value"},
}

// documentTypeRelevance boosts fields that are central to a given document
// type when ranking primary candidates.
var documentTypeRelevance = map[string][]string{
	"passport":           {"passport_number", "last_name", "first_name", "nationality", "date_of_birth", "expiration_date"},
	"national_id":        {"identification_number", "last_name", "first_name", "date_of_birth"},
	"national_id_card":   {"identification_number", "last_name", "first_name", "date_of_birth"},
	"drivers_license":    {"drivers_license_number", "last_name", "first_name", "expiration_date"},
	"lease_agreement":    {"landlord", "tenant", "property_address", "start_date", "end_date"},
	"contract":           {"party", "effective_date", "total_amount"},
	"invoice":            {"total_amount", "issue_date", "document_number"},
	"financial_document": {"total_amount", "account", "balance_amount"},
}

const (
	basePriorityWeight  = 1.0
	priorityWeightStep  = 0.1
	unlistedFieldWeight = 0.3
	relevanceBoost      = 1.0
	relevanceBase       = 0.8
)

// primaryCandidate carries the ranking inputs for one field in a category.
type primaryCandidate struct {
	name  string
	field domain.ExtractedField
	score float64
}

// SelectPrimaryFields ranks each category's fields by a composite score of
// importance weight, confidence, and document-type relevance, returning the
// top maxPerCategory fields across categories. Ties break on canonical name
// so the selection is deterministic.
func SelectPrimaryFields(categorized map[string]map[string]domain.ExtractedField, documentType string, maxPerCategory int) map[string]domain.ExtractedField {
	if maxPerCategory <= 0 {
		maxPerCategory = 1
	}
	primary := make(map[string]domain.ExtractedField)

	categories := make([]string, 0, len(categorized))
	for cat := range categorized {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		entries := categorized[cat]
		if len(entries) == 0 {
			continue
		}

		candidates := make([]primaryCandidate, 0, len(entries))
		for name, field := range entries {
			candidates = append(candidates, primaryCandidate{
				name:  name,
				field: field,
				score: importanceWeight(cat, name) * confidenceWeight(field.Confidence) * relevanceWeight(documentType, name),
			})
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].score != candidates[j].score {
				return candidates[i].score > candidates[j].score
			}
			return candidates[i].name < candidates[j].name
		})

		limit := maxPerCategory
		if limit > len(candidates) {
			limit = len(candidates)
		}
		for _, c := range candidates[:limit] {
			primary[c.name] = c.field
		}
	}
	return primary
}

// importanceWeight decays with the field's position in its category's
// priority list; unlisted fields get a flat low weight.
func importanceWeight(category, name string) float64 {
	priorities, ok := priorityFields[category]
	if !ok {
		return unlistedFieldWeight
	}
	for i, p := range priorities {
		if name == p || strings.Contains(name, p) {
			w := basePriorityWeight - float64(i)*priorityWeightStep
			if w < unlistedFieldWeight {
				w = unlistedFieldWeight
			}
			return w
		}
	}
	return unlistedFieldWeight
}

// confidenceWeight treats unreported confidence as neutral rather than
// disqualifying.
func confidenceWeight(confidence float64) float64 {
	if confidence <= 0 {
		return 0.5
	}
	return confidence
}

func relevanceWeight(documentType, name string) float64 {
	relevant, ok := documentTypeRelevance[documentType]
	if !ok {
		return relevanceBase
	}
	for _, r := range relevant {
		if name == r || strings.Contains(name, r) {
			return relevanceBoost
		}
	}
	return relevanceBase
}
