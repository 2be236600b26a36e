package fields_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docsift/internal/fields"
)

func TestNormalizeDate_KnownLayouts(t *testing.T) {
	cases := map[string]string{
		"2024-03-15":           "2024-03-15",
		"2024/03/15":           "2024-03-15",
		"03/15/2024":           "2024-03-15",
		"03-15-2024":           "2024-03-15",
		"15.03.2024":           "2024-03-15",
		"15 March 2024":        "2024-03-15",
		"15 Mar 2024":          "2024-03-15",
		"March 15, 2024":       "2024-03-15",
		"Mar 15, 2024":         "2024-03-15",
		"20240315":             "2024-03-15",
		"2024-03-15T10:30:00Z": "2024-03-15",
	}
	for raw, want := range cases {
		assert.Equal(t, want, fields.NormalizeDate(raw), "raw %q", raw)
	}
}

func TestNormalizeDate_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, "2024-03-15", fields.NormalizeDate("  2024-03-15  "))
}

func TestNormalizeDate_UnparseableReturnedUnchanged(t *testing.T) {
	for _, raw := range []string{"not a date", "31/31/2024", "sometime in spring", ""} {
		assert.Equal(t, raw, fields.NormalizeDate(raw), "raw %q", raw)
	}
}

func TestNormalizeDate_MonthFirstWinsAmbiguity(t *testing.T) {
	// 01/02/2024 could be Jan 2 or Feb 1; the layout order makes it Jan 2.
	assert.Equal(t, "2024-01-02", fields.NormalizeDate("01/02/2024"))
}
