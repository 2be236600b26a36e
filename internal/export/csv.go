package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"docsift/internal/domain"
)

// BOM is the UTF-8 byte order mark, written ahead of CSV output for Excel
// compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Document",
	"Document Type",
	"Extraction Status",
	"Category",
	"Field",
	"Value",
	"Confidence",
}

// Writer wraps csv.Writer for exporting extraction results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResponse converts an extraction response to CSV rows and writes
// them, one row per categorized field, in deterministic order.
func (w *Writer) WriteResponse(resp *domain.ExtractionResponse) error {
	for i := range resp.Documents {
		for _, row := range documentRows(i+1, &resp.Documents[i]) {
			if err := w.csv.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// documentRows flattens one document entry into ordered rows: categories
// sorted by name, fields sorted within each category.
func documentRows(docNumber int, entry *domain.DocumentEntry) [][]string {
	docType := ""
	if f, ok := entry.Data.Fields["document_type"]; ok {
		docType = fmt.Sprintf("%v", f.Value)
	}

	categories := make([]string, 0, len(entry.Data.CategorizedFields))
	for cat := range entry.Data.CategorizedFields {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var rows [][]string
	for _, cat := range categories {
		entries := entry.Data.CategorizedFields[cat]
		names := make([]string, 0, len(entries))
		for name := range entries {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			field := entries[name]
			rows = append(rows, []string{
				strconv.Itoa(docNumber),
				docType,
				string(entry.ExtractionStatus),
				cat,
				name,
				formatValue(field.Value),
				strconv.FormatFloat(field.Confidence, 'f', 2, 64),
			})
		}
	}
	return rows
}

func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses
// consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "extraction"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
