package fields_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docsift/internal/domain"
	"docsift/internal/fields"
)

func field(value any, confidence float64) domain.ExtractedField {
	return domain.ExtractedField{Value: value, Confidence: confidence}
}

func TestSelectPrimaryFields_TopOfPriorityListWins(t *testing.T) {
	categorized := map[string]map[string]domain.ExtractedField{
		fields.CategoryPersonal: {
			"full_name":  field("Jane Doe", 0.9),
			"gender":     field("F", 0.9),
			"first_name": field("Jane", 0.9),
		},
	}

	primary := fields.SelectPrimaryFields(categorized, "", 2)

	assert.Contains(t, primary, "full_name")
	assert.Contains(t, primary, "first_name")
	assert.NotContains(t, primary, "gender")
}

func TestSelectPrimaryFields_MaxPerCategory(t *testing.T) {
	categorized := map[string]map[string]domain.ExtractedField{
		fields.CategoryAddress: {
			"address":  field("1 Main St", 0.9),
			"city":     field("Lagos", 0.9),
			"state":    field("Lagos", 0.9),
			"zip_code": field("100001", 0.9),
		},
	}

	primary := fields.SelectPrimaryFields(categorized, "", 2)

	assert.Len(t, primary, 2)
	assert.Contains(t, primary, "address")
}

func TestSelectPrimaryFields_DocumentTypeRelevanceBoost(t *testing.T) {
	categorized := map[string]map[string]domain.ExtractedField{
		fields.CategoryIdentification: {
			"passport_number":        field("A01234567", 0.8),
			"identification_number":  field("XYZ", 0.8),
			"social_security_number": field("123-45-6789", 0.8),
		},
	}

	// For a passport, passport_number is boosted past identification_number
	// even though the latter tops the category priority list.
	primary := fields.SelectPrimaryFields(categorized, "passport", 1)

	assert.Contains(t, primary, "passport_number")
	assert.Len(t, primary, 1)
}

func TestSelectPrimaryFields_ConfidenceBreaksPriority(t *testing.T) {
	categorized := map[string]map[string]domain.ExtractedField{
		fields.CategoryContact: {
			"email":        field("j@example.com", 0.3),
			"phone_number": field("+2348000000000", 0.99),
		},
	}

	primary := fields.SelectPrimaryFields(categorized, "", 1)

	assert.Contains(t, primary, "phone_number")
}

func TestSelectPrimaryFields_LexicalTieBreak(t *testing.T) {
	// Two unlisted fields with identical confidence score identically; the
	// lexically earlier name is selected.
	categorized := map[string]map[string]domain.ExtractedField{
		fields.CategoryOther: {
			"zeta_field":  field("z", 0.8),
			"alpha_field": field("a", 0.8),
		},
	}

	primary := fields.SelectPrimaryFields(categorized, "", 1)

	assert.Contains(t, primary, "alpha_field")
	assert.NotContains(t, primary, "zeta_field")
}

func TestSelectPrimaryFields_EmptyInput(t *testing.T) {
	primary := fields.SelectPrimaryFields(map[string]map[string]domain.ExtractedField{}, "passport", 2)

	assert.Empty(t, primary)
}
