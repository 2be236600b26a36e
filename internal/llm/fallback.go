package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"docsift/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackStructurer tries providers in order, skipping those with open
// circuits. It implements port.DocumentStructurer.
type FallbackStructurer struct {
	structurers []port.DocumentStructurer
	circuits    []*circuitState
	names       []string
}

// NewFallbackStructurer creates a FallbackStructurer from an ordered list
// of providers and their names.
func NewFallbackStructurer(structurers []port.DocumentStructurer, names []string) *FallbackStructurer {
	circuits := make([]*circuitState, len(structurers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackStructurer{
		structurers: structurers,
		circuits:    circuits,
		names:       names,
	}
}

func (f *FallbackStructurer) StructureText(ctx context.Context, input port.TextInput) (*port.StructuredResult, error) {
	return f.attempt(func(s port.DocumentStructurer) (*port.StructuredResult, error) {
		return s.StructureText(ctx, input)
	})
}

func (f *FallbackStructurer) StructureImage(ctx context.Context, input port.ImageInput) (*port.StructuredResult, error) {
	return f.attempt(func(s port.DocumentStructurer) (*port.StructuredResult, error) {
		return s.StructureImage(ctx, input)
	})
}

func (f *FallbackStructurer) attempt(call func(port.DocumentStructurer) (*port.StructuredResult, error)) (*port.StructuredResult, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, s := range f.structurers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("llm.FallbackStructurer: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := call(s)
		if err == nil {
			return out, nil
		}

		log.Printf("llm.FallbackStructurer: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil {
		// All providers were skipped due to open circuits
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	if allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
