package normalizer

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode"

	"github.com/ledongthuc/pdf"

	"docsift/internal/config"
	"docsift/internal/domain"
	"docsift/internal/port"
)

const (
	defaultRenderDPI = 200

	// Thresholds below which an embedded PDF text layer is treated as
	// unusable (scanned PDFs often carry empty or garbage layers).
	minTextLayerChars = 50
	minPrintableRatio = 0.85
)

// Normalizer converts a validated payload into an ordered page sequence.
// Images become exactly one page; PDFs one page per document page.
type Normalizer struct {
	renderer    port.PageRenderer
	dpi         int
	maxPages    int
	concurrency int
}

// New creates a Normalizer rendering PDF pages through the given renderer.
func New(renderer port.PageRenderer, cfg config.PipelineConfig) *Normalizer {
	dpi := cfg.RenderDPI
	if dpi <= 0 {
		dpi = defaultRenderDPI
	}
	concurrency := cfg.PageConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Normalizer{
		renderer:    renderer,
		dpi:         dpi,
		maxPages:    cfg.MaxPages,
		concurrency: concurrency,
	}
}

// Normalize returns the payload's pages with stable 0-based indices.
// Re-running on identical bytes yields identical count and ordering.
func (n *Normalizer) Normalize(ctx context.Context, payload *domain.ValidatedPayload) ([]domain.Page, error) {
	switch payload.FileType {
	case domain.FileTypePNG, domain.FileTypeJPG:
		return []domain.Page{{Index: 0, Image: payload.Data, Format: payload.FileType}}, nil
	case domain.FileTypePDF:
		return n.normalizePDF(ctx, payload.Data)
	default:
		return nil, fmt.Errorf("cannot normalize file type %q", payload.FileType)
	}
}

func (n *Normalizer) normalizePDF(ctx context.Context, data []byte) ([]domain.Page, error) {
	count, err := n.renderer.PageCount(ctx, data)
	if err != nil {
		return nil, &domain.PageRenderError{PageIndex: 0, Err: fmt.Errorf("page count: %w", err)}
	}
	if count == 0 {
		return nil, domain.ErrEmptyPayload
	}
	if n.maxPages > 0 && count > n.maxPages {
		log.Printf("normalizer.Normalize: pdf has %d pages, capping at %d", count, n.maxPages)
		count = n.maxPages
	}

	textLayers := extractTextLayers(data, count)

	// Pages render concurrently but land in index order; the first
	// failing index wins so the error is deterministic.
	pages := make([]domain.Page, count)
	errs := make([]error, count)
	sem := make(chan struct{}, n.concurrency)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			img, err := n.renderer.RenderPage(ctx, data, idx, n.dpi)
			if err != nil {
				errs[idx] = err
				return
			}
			pages[idx] = domain.Page{Index: idx, Image: img, Format: domain.FileTypePNG, Text: textLayers[idx]}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, &domain.PageRenderError{PageIndex: i, Err: err}
		}
	}
	return pages, nil
}

// extractTextLayers pulls per-page embedded text where the PDF carries a
// usable layer. Failures leave pages without text; scanned PDFs have none.
func extractTextLayers(data []byte, count int) []string {
	layers := make([]string, count)
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return layers
	}
	total := reader.NumPage()
	for i := 0; i < count && i < total; i++ {
		page := reader.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if usableText(text) {
			layers[i] = text
		}
	}
	return layers
}

// usableText filters out the near-empty or binary-noise layers scanned
// PDFs sometimes carry.
func usableText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < minTextLayerChars {
		return false
	}
	return printableRatio(trimmed) >= minPrintableRatio
}

func printableRatio(text string) float64 {
	if text == "" {
		return 0
	}
	printable, total := 0, 0
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return float64(printable) / float64(total)
}
