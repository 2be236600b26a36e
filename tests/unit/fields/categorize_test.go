package fields_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsift/internal/domain"
	"docsift/internal/fields"
)

func passportFields() map[string]domain.ExtractedField {
	return map[string]domain.ExtractedField{
		"Passport No":       field("A01234567", 0.95),
		"Surname":           field("DOE", 0.92),
		"fname":             field("JANE", 0.9),
		"dob":               field("15 Mar 1990", 0.88),
		"expiry_date":       field("2030-01-01", 0.85),
		"document_type":     field("international_passport", 0.9),
		"extraction_method": field("ocr_llm", 1.0),
	}
}

func TestCategorize_CanonicalizesNames(t *testing.T) {
	out := fields.Categorize(passportFields(), fields.Options{})

	assert.Contains(t, out.Fields, "passport_number")
	assert.Contains(t, out.Fields, "last_name")
	assert.Contains(t, out.Fields, "first_name")
	assert.Contains(t, out.Fields, "date_of_birth")
	assert.Contains(t, out.Fields, "expiration_date")
	assert.NotContains(t, out.Fields, "Surname")
}

func TestCategorize_NormalizesDateValues(t *testing.T) {
	out := fields.Categorize(passportFields(), fields.Options{})

	assert.Equal(t, "1990-03-15", out.Fields["date_of_birth"].Value)
	assert.Equal(t, "2030-01-01", out.Fields["expiration_date"].Value)
}

func TestCategorize_GroupsIntoCategories(t *testing.T) {
	out := fields.Categorize(passportFields(), fields.Options{})

	assert.Contains(t, out.CategorizedFields[fields.CategoryIdentification], "passport_number")
	assert.Contains(t, out.CategorizedFields[fields.CategoryPersonal], "last_name")
	assert.Contains(t, out.CategorizedFields[fields.CategoryPersonal], "date_of_birth")
}

func TestCategorize_DropsLowConfidenceFields(t *testing.T) {
	raw := passportFields()
	raw["place_of_issue"] = field("LAGOS", 0.2)

	out := fields.Categorize(raw, fields.Options{ConfidenceFloor: 0.6})

	assert.NotContains(t, out.Fields, "place_of_issue")
}

func TestCategorize_ProtectedFieldsSurviveFilter(t *testing.T) {
	raw := map[string]domain.ExtractedField{
		"document_type":     field("unknown_document", 0.1),
		"extraction_method": field("vision_llm", 0.1),
		"noise":             field("x", 0.1),
	}

	out := fields.Categorize(raw, fields.Options{ConfidenceFloor: 0.6})

	assert.Contains(t, out.Fields, "document_type")
	assert.Contains(t, out.Fields, "extraction_method")
	assert.NotContains(t, out.Fields, "noise")
}

func TestCategorize_CollisionHigherConfidenceWins(t *testing.T) {
	raw := map[string]domain.ExtractedField{
		"dob":        field("1990-03-15", 0.9),
		"birth_date": field("1985-01-01", 0.7),
	}

	out := fields.Categorize(raw, fields.Options{})

	require.Contains(t, out.Fields, "date_of_birth")
	assert.Equal(t, "1990-03-15", out.Fields["date_of_birth"].Value)
}

func TestCategorize_CollisionTieBreaksOnRawName(t *testing.T) {
	raw := map[string]domain.ExtractedField{
		"dob":        field("1990-03-15", 0.8),
		"birth_date": field("1985-01-01", 0.8),
	}

	out := fields.Categorize(raw, fields.Options{})

	// Equal confidence: the lexically earlier raw name (birth_date) wins.
	assert.Equal(t, "1985-01-01", out.Fields["date_of_birth"].Value)
}

func TestCategorize_EmitsRelatedPairsAboveThreshold(t *testing.T) {
	out := fields.Categorize(passportFields(), fields.Options{})

	found := false
	for _, p := range out.RelatedFields {
		assert.Greater(t, p.RelationshipScore, 0.7)
		if p.Field1 == "first_name" && p.Field2 == "last_name" {
			found = true
		}
	}
	assert.True(t, found, "expected first_name/last_name pair")
}

func TestCategorize_DoesNotMutateInput(t *testing.T) {
	raw := passportFields()
	snapshot := make(map[string]domain.ExtractedField, len(raw))
	for k, v := range raw {
		snapshot[k] = v
	}

	fields.Categorize(raw, fields.Options{})

	assert.Equal(t, snapshot, raw)
}

func TestCategorize_PureAcrossRuns(t *testing.T) {
	first := fields.Categorize(passportFields(), fields.Options{DocumentType: "passport"})
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, fields.Categorize(passportFields(), fields.Options{DocumentType: "passport"}))
	}
}

func TestCategorize_ZeroOptionsUseDefaults(t *testing.T) {
	raw := map[string]domain.ExtractedField{
		"first_name": field("JANE", 0.59),
		"last_name":  field("DOE", 0.61),
	}

	out := fields.Categorize(raw, fields.Options{})

	assert.NotContains(t, out.Fields, "first_name")
	assert.Contains(t, out.Fields, "last_name")
}
