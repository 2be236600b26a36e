package fields

import "strings"

// Category names form a fixed closed set. Unmatched fields land in
// CategoryOther rather than being dropped.
const (
	CategoryPersonal       = "personal_information"
	CategoryIdentification = "identification_documents"
	CategoryContact        = "contact_details"
	CategoryAddress        = "address_information"
	CategoryFinancial      = "financial_details"
	CategoryDates          = "important_dates"
	CategoryDocument       = "document_information"
	CategoryProperty       = "property_details"
	CategoryParties        = "involved_parties"
	CategoryLegal          = "legal_terms"
	CategoryOther          = "other_information"
)

type categoryRule struct {
	name  string
	terms []string
}

// categoryRules are checked in order; the first rule whose terms match the
// field name wins, so a field is always assigned exactly one category.
var categoryRules = []categoryRule{
	{CategoryPersonal, []string{
		"name", "first", "last", "middle", "full", "gender", "sex",
		"age", "birth", "nationality", "citizenship", "marital",
		"spouse", "dependent",
	}},
	{CategoryIdentification, []string{
		"id", "identification", "passport", "license", "ssn", "social_security",
		"tax", "tin", "driver", "national_id", "certificate", "registration",
	}},
	{CategoryContact, []string{
		"phone", "mobile", "cell", "telephone", "email", "fax",
		"website", "url", "web", "contact",
	}},
	{CategoryAddress, []string{
		"address", "street", "road", "avenue", "boulevard", "lane", "drive",
		"city", "town", "state", "province", "county", "country", "zip", "postal",
		"apartment", "unit", "building", "floor", "suite",
	}},
	{CategoryFinancial, []string{
		"amount", "payment", "fee", "price", "cost", "value", "total",
		"sum", "balance", "deposit", "withdraw", "transfer", "transaction",
		"account", "bank", "currency", "interest", "principal", "loan", "debt",
		"credit", "debit", "income", "expense", "salary", "wage", "rate",
	}},
	{CategoryDates, []string{
		"date", "time", "day", "month", "year", "expiry", "expiration",
		"issued", "effective", "start", "end", "period", "duration",
		"deadline", "schedule", "calendar", "anniversary", "renewal",
	}},
	{CategoryDocument, []string{
		"document", "form", "application", "file", "record", "type",
		"category", "class", "title", "subject", "reference", "number",
		"status", "version", "revision", "edition", "signature",
	}},
	{CategoryProperty, []string{
		"property", "land", "real_estate", "parcel", "lot", "plot", "acre",
		"hectare", "square", "dimension", "area", "footage", "asset", "estate",
	}},
	{CategoryParties, []string{
		"party", "grantor", "grantee", "borrower", "lender", "buyer", "seller",
		"owner", "tenant", "landlord", "lessor", "lessee", "assignor", "assignee",
		"trustee", "beneficiary", "guarantor", "witness", "signatory", "agent",
		"representative", "broker", "attorney", "lawyer", "notary",
	}},
	{CategoryLegal, []string{
		"term", "condition", "clause", "provision", "covenant", "warranty",
		"representation", "indemnity", "liability", "obligation", "right",
		"law", "legal", "regulation", "compliance", "violation", "penalty",
		"dispute", "resolution", "arbitration", "litigation", "jurisdiction",
		"governing", "enforcement",
	}},
}

// CategoryFor assigns a canonical field name to exactly one category.
func CategoryFor(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				return rule.name
			}
		}
	}
	return CategoryOther
}
