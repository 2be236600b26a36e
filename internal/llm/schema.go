package llm

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"docsift/internal/domain"
	"docsift/internal/port"
)

// lowConfidenceMean is the reported-score mean below which a result is
// flagged as carrying the provider's own low-confidence signal.
const lowConfidenceMean = 0.4

const resultSchemaJSON = `{
  "type": "object",
  "required": ["fields"],
  "properties": {
    "document_type": {"type": "string"},
    "fields": {"type": "object"},
    "confidence_scores": {
      "type": "object",
      "additionalProperties": {"type": "number", "minimum": 0, "maximum": 1}
    }
  }
}`

// resultSchema is compiled once at process start.
var resultSchema = mustCompileResultSchema()

func mustCompileResultSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("result.json", strings.NewReader(resultSchemaJSON)); err != nil {
		panic(fmt.Sprintf("llm: add result schema: %v", err))
	}
	schema, err := compiler.Compile("result.json")
	if err != nil {
		panic(fmt.Sprintf("llm: compile result schema: %v", err))
	}
	return schema
}

// ValidateResultJSON validates raw provider output against the expected
// result shape.
func ValidateResultJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	if err := resultSchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match result schema: %w", err)
	}
	return nil
}

// rawResult is the JSON contract every provider prompt asks for.
type rawResult struct {
	DocumentType     string         `json:"document_type"`
	Fields           map[string]any `json:"fields"`
	ConfidenceScores map[string]any `json:"confidence_scores"`
}

// ParseResult turns a provider's text completion into a StructuredResult.
// Output failing strict schema validation is sanitized rather than
// rejected: scores are clamped to [0,1] and non-scalar field values are
// dropped with a log line. A zero confidence means the provider did not
// report one; the coordinator substitutes the tier default.
func ParseResult(text, model string) (*port.StructuredResult, error) {
	data := []byte(strings.TrimSpace(text))

	if err := ValidateResultJSON(data); err != nil {
		log.Printf("llm.ParseResult: output failed schema validation, sanitizing: %v", err)
	}

	var raw rawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(string(data), 500))
	}
	if len(raw.Fields) == 0 {
		return nil, fmt.Errorf("LLM output contains no fields (raw: %s)", truncate(string(data), 500))
	}

	fields := make(map[string]domain.ExtractedField, len(raw.Fields))
	var reported []float64
	for name, value := range raw.Fields {
		switch value.(type) {
		case map[string]any, []any:
			log.Printf("llm.ParseResult: dropping non-scalar field %q", name)
			continue
		}
		conf := clamp01(coerceScore(raw.ConfidenceScores[name]))
		if conf > 0 {
			reported = append(reported, conf)
		}
		fields[name] = domain.ExtractedField{Value: value, Confidence: conf}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("LLM output contains no usable fields (raw: %s)", truncate(string(data), 500))
	}

	low := false
	if len(reported) > 0 {
		var sum float64
		for _, c := range reported {
			sum += c
		}
		low = sum/float64(len(reported)) < lowConfidenceMean
	}

	return &port.StructuredResult{
		DocumentType:  normalizeDocType(raw.DocumentType),
		Fields:        fields,
		ModelUsed:     model,
		LowConfidence: low,
	}, nil
}

func normalizeDocType(dt string) string {
	dt = strings.ToLower(strings.TrimSpace(dt))
	return strings.ReplaceAll(dt, " ", "_")
}

func coerceScore(v any) float64 {
	switch s := v.(type) {
	case float64:
		return s
	case string:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
