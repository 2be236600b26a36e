package fields

import (
	"regexp"
	"sort"
	"strings"

	"docsift/internal/domain"
)

// relatedEmitThreshold filters pairs out of the final output; shared-prefix
// pairs score exactly 0.7 and therefore surface only through the full
// MatchRelatedFields listing, not the emitted related_fields.
const relatedEmitThreshold = 0.7

// sharedPrefixScore is assigned to field pairs sharing a meaningful name prefix.
const sharedPrefixScore = 0.7

type relationPattern struct {
	first  *regexp.Regexp
	second *regexp.Regexp
	score  float64
}

func relation(first, second string, score float64) relationPattern {
	return relationPattern{
		first:  regexp.MustCompile(first),
		second: regexp.MustCompile(second),
		score:  score,
	}
}

// relationPatterns is the static table of known field relationships.
var relationPatterns = []relationPattern{
	// Names
	relation(`first_name`, `last_name`, 0.9),
	relation(`first_name`, `middle_name`, 0.8),
	relation(`middle_name`, `last_name`, 0.8),
	// Address components
	relation(`address`, `city`, 0.9),
	relation(`city`, `state`, 0.9),
	relation(`state`, `zip_code`, 0.9),
	relation(`country`, `(city|state|zip)`, 0.8),
	// Dates
	relation(`issue_date`, `expiration_date`, 0.9),
	relation(`start_date`, `end_date`, 0.9),
	relation(`effective_date`, `term_date`, 0.8),
	// Parties
	relation(`grantor`, `grantee`, 0.9),
	relation(`buyer`, `seller`, 0.9),
	relation(`landlord`, `tenant`, 0.9),
	relation(`lender`, `borrower`, 0.9),
}

// MatchRelatedFields finds pairs of canonical field names with a known
// semantic relationship. The result is ordered by score descending, then
// by field names, so identical inputs always produce identical output.
func MatchRelatedFields(fieldNames []string) []domain.RelatedFieldPair {
	names := append([]string(nil), fieldNames...)
	sort.Strings(names)

	var pairs []domain.RelatedFieldPair
	for i, f1 := range names {
		for _, f2 := range names[i+1:] {
			if score, ok := relationScore(f1, f2); ok {
				pairs = append(pairs, domain.RelatedFieldPair{Field1: f1, Field2: f2, RelationshipScore: score})
				continue
			}
			if sharesPrefix(f1, f2) {
				pairs = append(pairs, domain.RelatedFieldPair{Field1: f1, Field2: f2, RelationshipScore: sharedPrefixScore})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].RelationshipScore != pairs[j].RelationshipScore {
			return pairs[i].RelationshipScore > pairs[j].RelationshipScore
		}
		if pairs[i].Field1 != pairs[j].Field1 {
			return pairs[i].Field1 < pairs[j].Field1
		}
		return pairs[i].Field2 < pairs[j].Field2
	})
	return pairs
}

func relationScore(f1, f2 string) (float64, bool) {
	for _, p := range relationPatterns {
		if (p.first.MatchString(f1) && p.second.MatchString(f2)) ||
			(p.second.MatchString(f1) && p.first.MatchString(f2)) {
			return p.score, true
		}
	}
	return 0, false
}

// sharesPrefix reports whether two compound names share the same first
// segment (e.g. seller_name / seller_address).
func sharesPrefix(f1, f2 string) bool {
	i1 := strings.IndexByte(f1, '_')
	i2 := strings.IndexByte(f2, '_')
	if i1 <= 2 || i2 <= 2 {
		return false
	}
	return f1[:i1] == f2[:i2]
}

// filterRelated keeps only pairs scoring above the emit threshold.
func filterRelated(pairs []domain.RelatedFieldPair) []domain.RelatedFieldPair {
	out := make([]domain.RelatedFieldPair, 0, len(pairs))
	for _, p := range pairs {
		if p.RelationshipScore > relatedEmitThreshold {
			out = append(out, p)
		}
	}
	return out
}
