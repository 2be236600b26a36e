package fields

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when normalizing a date value. The first
// layout that parses wins, so ambiguous inputs resolve deterministically
// (day-first layouts are tried after month-first, matching common KYC
// document conventions).
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"20060102",
	"02 Jan 06",
	"2006-01-02T15:04:05Z07:00",
}

// dateFieldTerms mark canonical names whose values should be treated as dates.
var dateFieldTerms = []string{"date", "expiry", "expiration", "birth", "issued"}

// isDateField reports whether a canonical field name holds a date value.
func isDateField(name string) bool {
	lower := strings.ToLower(name)
	for _, term := range dateFieldTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// NormalizeDate parses a raw date string against known layouts and returns
// it in ISO YYYY-MM-DD form. Unparseable input is returned unchanged so no
// extracted data is ever lost to normalization.
func NormalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}
