package fields

import (
	"regexp"
	"strings"
)

// replacements folds raw field-name synonyms and abbreviations into
// canonical names. Checked as exact matches first, then as underscore-bounded
// segments inside longer names.
var replacements = map[string]string{
	// Personal identification
	"dob":            "date_of_birth",
	"birthdate":      "date_of_birth",
	"birth_date":     "date_of_birth",
	"date_birth":     "date_of_birth",
	"ssn":            "social_security_number",
	"ss_num":         "social_security_number",
	"social_sec":     "social_security_number",
	"social_sec_num": "social_security_number",
	"tin":            "tax_identification_number",
	"tax_id":         "tax_identification_number",
	"passport":       "passport_number",
	"passport_no":    "passport_number",
	"passport_num":   "passport_number",
	"driver_license": "drivers_license_number",
	"dl_number":      "drivers_license_number",
	"dl_num":         "drivers_license_number",
	"drivers_lic":    "drivers_license_number",
	"id_num":         "identification_number",
	"id_number":      "identification_number",
	"id_no":          "identification_number",
	"ident_num":      "identification_number",

	// Names
	"fname":         "first_name",
	"firstname":     "first_name",
	"first":         "first_name",
	"name_first":    "first_name",
	"given_name":    "first_name",
	"lname":         "last_name",
	"lastname":      "last_name",
	"last":          "last_name",
	"name_last":     "last_name",
	"surname":       "last_name",
	"family_name":   "last_name",
	"mname":         "middle_name",
	"middle":        "middle_name",
	"middlename":    "middle_name",
	"name_middle":   "middle_name",
	"fullname":      "full_name",
	"full":          "full_name",
	"name_full":     "full_name",
	"complete_name": "full_name",

	// Contact information
	"addr":           "address",
	"address_line_1": "address_line1",
	"address_line_2": "address_line2",
	"addr_1":         "address_line1",
	"addr_2":         "address_line2",
	"street_addr":    "street_address",
	"city_name":      "city",
	"state_name":     "state",
	"state_province": "state",
	"province":       "state",
	"zip":            "zip_code",
	"zipcode":        "zip_code",
	"postal":         "postal_code",
	"country_name":   "country",
	"phone":          "phone_number",
	"phone_num":      "phone_number",
	"telephone":      "phone_number",
	"tel":            "phone_number",
	"tel_num":        "phone_number",
	"mobile":         "mobile_number",
	"cell":           "mobile_number",
	"cellphone":      "mobile_number",
	"fax":            "fax_number",
	"fax_num":        "fax_number",
	"email_address":  "email",
	"mail":           "email",
	"e_mail":         "email",

	// Dates
	"exp":          "expiration",
	"exp_date":     "expiration_date",
	"expiry":       "expiration_date",
	"expiry_date":  "expiration_date",
	"expiration":   "expiration_date",
	"issue":        "issue_date",
	"issue_dt":     "issue_date",
	"issued":       "issue_date",
	"issued_date":  "issue_date",
	"date_issued":  "issue_date",
	"effective":    "effective_date",
	"effective_dt": "effective_date",
	"start":        "start_date",
	"start_dt":     "start_date",
	"date_start":   "start_date",
	"end":          "end_date",
	"end_dt":       "end_date",
	"date_end":     "end_date",
	"term":         "term_date",

	// Financial
	"amt":        "amount",
	"total_amt":  "total_amount",
	"sum":        "total_amount",
	"tot":        "total",
	"fee":        "fee_amount",
	"charge":     "charge_amount",
	"price":      "price_amount",
	"cost":       "cost_amount",
	"value":      "value_amount",
	"rate":       "rate_value",
	"percentage": "percentage_value",
	"pct":        "percentage_value",
	"balance":    "balance_amount",
	"payment":    "payment_amount",
	"deposit":    "deposit_amount",
	"currency":   "currency_type",

	// Document
	"desc":          "description",
	"descr":         "description",
	"summary":       "description",
	"ref":           "reference",
	"ref_num":       "reference_number",
	"reference_num": "reference_number",
	"doc":           "document",
	"doc_num":       "document_number",
	"document_num":  "document_number",
	"type":          "document_type",
	"doc_type":      "document_type",
	"status":        "status_value",
	"title":         "document_title",

	// Company / organization
	"org":          "organization",
	"org_name":     "organization_name",
	"company":      "organization_name",
	"company_name": "organization_name",
	"business":     "business_name",
	"corp":         "corporation_name",
	"corporation":  "corporation_name",
}

// genericNames are too vague to stand alone; they pick up a document_ prefix.
var genericNames = map[string]bool{
	"name":    true,
	"date":    true,
	"number":  true,
	"id":      true,
	"amount":  true,
	"address": true,
	"code":    true,
}

var (
	nonIdentRe      = regexp.MustCompile(`[^a-z0-9_]+`)
	multiUnderscore = regexp.MustCompile(`_{2,}`)
)

type redundantPattern struct {
	re   *regexp.Regexp
	repl string
}

// redundantPatterns collapses doubled terms the synonym fold can produce.
var redundantPatterns = []redundantPattern{
	{regexp.MustCompile(`number_num`), "number"},
	{regexp.MustCompile(`date_dt`), "date"},
	{regexp.MustCompile(`amount_amt`), "amount"},
	{regexp.MustCompile(`name_of_name`), "name"},
}

// Canonicalize maps a raw extracted field name to its canonical form.
// Pure: the same raw name always produces the same canonical name.
func Canonicalize(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = nonIdentRe.ReplaceAllString(name, "")
	name = multiUnderscore.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "unnamed_field"
	}

	if canonical, ok := replacements[name]; ok {
		return canonical
	}

	// Fold known synonyms appearing as underscore-bounded segments inside
	// longer names (e.g. holder_dob -> holder_date_of_birth). The list is
	// ordered so repeated calls rewrite identically.
	for _, seg := range segmentReplacements {
		if seg.re.MatchString(name) {
			name = seg.re.ReplaceAllString(name, "${1}"+seg.canonical+"${2}")
			name = multiUnderscore.ReplaceAllString(name, "_")
			name = strings.Trim(name, "_")
			break
		}
	}

	for _, r := range redundantPatterns {
		name = r.re.ReplaceAllString(name, r.repl)
	}

	if genericNames[name] {
		name = "document_" + name
	}
	return name
}

type segmentReplacement struct {
	re        *regexp.Regexp
	canonical string
}

func segment(old, canonical string) segmentReplacement {
	return segmentReplacement{
		re:        regexp.MustCompile(`(^|_)` + regexp.QuoteMeta(old) + `($|_)`),
		canonical: canonical,
	}
}

// segmentReplacements is the subset of replacements safe to apply inside
// longer names. Short or ambiguous keys (first, last, type, value) are
// excluded because they are common legitimate segments.
var segmentReplacements = []segmentReplacement{
	segment("dob", "date_of_birth"),
	segment("ssn", "social_security_number"),
	segment("fname", "first_name"),
	segment("lname", "last_name"),
	segment("surname", "last_name"),
	segment("zipcode", "zip_code"),
	segment("telephone", "phone_number"),
	segment("expiry", "expiration"),
	segment("amt", "amount"),
}
