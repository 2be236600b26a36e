package extractor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"docsift/internal/config"
	"docsift/internal/domain"
	"docsift/internal/fields"
	"docsift/internal/llm"
	"docsift/internal/port"
)

// Tier-default confidences applied to fields the provider returned without
// a native score. The vision tier is trusted slightly less than validated
// OCR text; vision after an outright OCR failure less still.
const (
	confidenceOCRLLM           = 0.8
	confidenceVision           = 0.7
	confidenceVisionAfterError = 0.6
)

// pageOutcome is one page's position in the extraction state machine.
type pageOutcome struct {
	index    int
	state    domain.PageState
	docType  string
	fields   map[string]domain.ExtractedField
	method   domain.ExtractionMethod
	text     string
	lastErr  error
}

// Coordinator drives the two-tier extraction of a page sequence: OCR plus
// text structuring first, vision structuring as fallback, bounded page
// parallelism, and a merge of per-page results into logical documents.
type Coordinator struct {
	ocr        port.OCREngine
	structurer port.DocumentStructurer

	minOCRLines         int
	concurrency         int
	retryAttempts       int
	retryBaseDelay      time.Duration
	similarityThreshold float64
}

// NewCoordinator creates a Coordinator from the pipeline configuration.
func NewCoordinator(ocrEngine port.OCREngine, structurer port.DocumentStructurer, cfg config.PipelineConfig) *Coordinator {
	minLines := cfg.MinOCRLines
	if minLines <= 0 {
		minLines = 3
	}
	concurrency := cfg.PageConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	attempts := cfg.RetryAttempts
	if attempts < 0 {
		attempts = 0
	}
	baseDelay := time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.5
	}
	return &Coordinator{
		ocr:                 ocrEngine,
		structurer:          structurer,
		minOCRLines:         minLines,
		concurrency:         concurrency,
		retryAttempts:       attempts,
		retryBaseDelay:      baseDelay,
		similarityThreshold: threshold,
	}
}

// Extract runs the tiered pipeline over every page and merges the ordered
// per-page results into logical documents. Page extraction fans out over a
// bounded worker pool; the merge consumes results strictly in page order.
// One page's permanent failure never aborts its siblings.
func (c *Coordinator) Extract(ctx context.Context, pages []domain.Page) ([]domain.DocumentResult, error) {
	if len(pages) == 0 {
		return nil, domain.ErrEmptyPayload
	}

	outcomes := make([]pageOutcome, len(pages))
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup
	for i := range pages {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[idx] = c.extractPage(ctx, pages[idx])
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, o := range outcomes {
		if o.state == domain.PageAccepted {
			accepted++
		}
	}
	if accepted == 0 {
		// Partial field maps still surface through the failed documents.
		log.Printf("extractor.Extract: no page accepted out of %d", len(pages))
	}

	return c.mergeOutcomes(outcomes), nil
}

// extractPage walks one page through the state machine:
// PENDING -> OCR_ATTEMPTED -> {ACCEPTED | VISION_FALLBACK_ATTEMPTED} -> {ACCEPTED | FAILED}.
func (c *Coordinator) extractPage(ctx context.Context, page domain.Page) pageOutcome {
	out := pageOutcome{index: page.Index, state: domain.PagePending}

	text := page.Text
	var ocrErr error
	if text == "" {
		text, ocrErr = c.ocr.Recognize(ctx, page.Image, page.Format)
		if ocrErr != nil {
			log.Printf("extractor.extractPage: page %d ocr failed: %v", page.Index, ocrErr)
		}
	}
	out.text = text

	if ocrErr == nil && usableLines(text) >= c.minOCRLines {
		out.state = domain.PageOCRAttempted
		hint, _ := fields.DetectDocumentType(text)
		result, err := c.callText(ctx, port.TextInput{Text: text, DocumentTypeHint: hint})
		if err == nil && sufficient(result) {
			out.state = domain.PageAccepted
			out.method = domain.MethodOCRLLM
			out.docType = firstNonEmpty(result.DocumentType, hint)
			out.fields = applyTierDefault(result.Fields, confidenceOCRLLM)
			verifyAgainstText(out.fields, text)
			return out
		}
		if err != nil {
			log.Printf("extractor.extractPage: page %d text tier failed: %v", page.Index, err)
			out.lastErr = err
		} else {
			log.Printf("extractor.extractPage: page %d text tier insufficient, escalating to vision", page.Index)
			// Retain the insufficient map; vision may still fail and
			// partial data beats none.
			out.docType = firstNonEmpty(result.DocumentType, hint)
			out.fields = applyTierDefault(result.Fields, confidenceOCRLLM)
		}
	} else if ocrErr == nil {
		log.Printf("extractor.extractPage: page %d has %d usable ocr lines (< %d), escalating to vision",
			page.Index, usableLines(text), c.minOCRLines)
	}

	out.state = domain.PageVisionAttempted
	visionConfidence := confidenceVision
	if ocrErr != nil {
		visionConfidence = confidenceVisionAfterError
	}

	result, err := c.callVision(ctx, port.ImageInput{Image: page.Image, Format: page.Format})
	if err != nil {
		log.Printf("extractor.extractPage: page %d vision tier failed: %v", page.Index, err)
		out.state = domain.PageFailed
		out.lastErr = err
		return out
	}

	out.method = domain.MethodVisionLLM
	out.docType = firstNonEmpty(result.DocumentType, out.docType)
	out.fields = mergeFieldMaps(out.fields, applyTierDefault(result.Fields, visionConfidence))
	if text != "" {
		verifyAgainstText(out.fields, text)
	}

	if sufficient(result) {
		out.state = domain.PageAccepted
	} else {
		out.state = domain.PageFailed
		out.lastErr = domain.ErrInsufficientExtraction
	}
	return out
}

func (c *Coordinator) callText(ctx context.Context, input port.TextInput) (*port.StructuredResult, error) {
	return c.withRetry(ctx, func() (*port.StructuredResult, error) {
		return c.structurer.StructureText(ctx, input)
	})
}

func (c *Coordinator) callVision(ctx context.Context, input port.ImageInput) (*port.StructuredResult, error) {
	return c.withRetry(ctx, func() (*port.StructuredResult, error) {
		return c.structurer.StructureImage(ctx, input)
	})
}

// withRetry retries transient provider failures with exponential backoff,
// honoring a provider-suggested delay when one is shorter. Permanent
// errors return immediately.
func (c *Coordinator) withRetry(ctx context.Context, call func() (*port.StructuredResult, error)) (*port.StructuredResult, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := c.retryBaseDelay << (attempt - 1)
			if suggested, ok := llm.SuggestedRetryAfter(lastErr); ok && suggested < delay {
				delay = suggested
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		result, err := call()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !llm.IsRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("provider retries exhausted: %w", lastErr)
}

// applyTierDefault substitutes the tier default for fields the provider
// returned without a native confidence, normalizing both tiers to the same
// scale at the coordinator boundary.
func applyTierDefault(in map[string]domain.ExtractedField, tierDefault float64) map[string]domain.ExtractedField {
	out := make(map[string]domain.ExtractedField, len(in))
	for name, f := range in {
		if f.Confidence <= 0 {
			f.Confidence = tierDefault
		}
		out[name] = f
	}
	return out
}

// mergeFieldMaps unions two field maps, preferring the higher-confidence
// value when both carry the same name. Either argument may be nil.
func mergeFieldMaps(a, b map[string]domain.ExtractedField) map[string]domain.ExtractedField {
	if a == nil {
		return b
	}
	out := make(map[string]domain.ExtractedField, len(a)+len(b))
	for name, f := range a {
		out[name] = f
	}
	for name, f := range b {
		if existing, ok := out[name]; !ok || f.Confidence > existing.Confidence {
			out[name] = f
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
