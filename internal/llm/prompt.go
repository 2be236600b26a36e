package llm

// BuildTextPrompt returns the extraction prompt for OCR or text-layer
// content. The document text is embedded at the end of the prompt.
func BuildTextPrompt(text, documentTypeHint string) string {
	hint := documentTypeHint
	if hint == "" {
		hint = "identity or KYC document"
	}
	return `You are a document data extraction assistant. The text below was extracted from a ` + hint + `. Extract ALL identifiable fields into the JSON structure described.

IMPORTANT INSTRUCTIONS:
- The text may contain OCR recognition noise. Correct obviously garbled values only where context makes the correction unambiguous; otherwise extract verbatim.
- Normalize all dates to YYYY-MM-DD format.
- Use lowercase snake_case for field names.
- Never invent values that are not present in the text.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object.

Return three top-level keys: "document_type", "fields" and "confidence_scores".

{
  "document_type": "passport | national_id | driving_license | residence_permit | visa | utility_bill | bank_statement | other",
  "fields": {
    "document_number": "",
    "surname": "",
    "given_names": "",
    "date_of_birth": "",
    "date_of_issue": "",
    "date_of_expiry": "",
    "nationality": "",
    "country": "",
    "sex": ""
  },
  "confidence_scores": {}
}

Include every additional field present in the document beyond the ones listed (addresses, issuing authority, MRZ lines, and so on). Omit fields that are not present rather than returning empty strings. The "confidence_scores" object must mirror the keys of "fields" with float values between 0.0 and 1.0 indicating your confidence in each extracted value.

DOCUMENT TEXT:
` + text
}

// BuildVisionPrompt returns the extraction prompt used when structuring a
// page image directly, without an OCR intermediate.
func BuildVisionPrompt() string {
	return `You are a document data extraction assistant. Analyze the provided document image and extract ALL identifiable fields into the JSON structure described.

IMPORTANT INSTRUCTIONS:
- Read every printed and machine-readable zone on the document, including small print and the MRZ strip if present.
- Normalize all dates to YYYY-MM-DD format.
- Use lowercase snake_case for field names.
- Never invent values that are not visible in the image.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object.

Return three top-level keys: "document_type", "fields" and "confidence_scores".

{
  "document_type": "passport | national_id | driving_license | residence_permit | visa | utility_bill | bank_statement | other",
  "fields": {
    "document_number": "",
    "surname": "",
    "given_names": "",
    "date_of_birth": "",
    "date_of_issue": "",
    "date_of_expiry": "",
    "nationality": "",
    "country": "",
    "sex": ""
  },
  "confidence_scores": {}
}

Include every additional field visible on the document beyond the ones listed. Omit fields that are not present rather than returning empty strings. The "confidence_scores" object must mirror the keys of "fields" with float values between 0.0 and 1.0 indicating your confidence in each extracted value.`
}
