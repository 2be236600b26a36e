package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docsift/internal/config"
)

// Renderer counts PDF pages with pdfcpu and rasterizes them with the
// pdftoppm binary. It satisfies port.PageRenderer.
type Renderer struct {
	runner   Runner
	pdftoppm string
	timeout  time.Duration
}

// NewRenderer creates a pdftoppm-backed page renderer.
func NewRenderer(cfg config.OCRConfig) *Renderer {
	return NewRendererWithRunner(cfg, execRunner{})
}

// NewRendererWithRunner creates a Renderer with a custom command runner (used in tests).
func NewRendererWithRunner(cfg config.OCRConfig, runner Runner) *Renderer {
	pdftoppm := cfg.PdftoppmPath
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	timeoutSecs := cfg.TimeoutSecs
	if timeoutSecs <= 0 {
		timeoutSecs = 120
	}
	return &Renderer{
		runner:   runner,
		pdftoppm: pdftoppm,
		timeout:  time.Duration(timeoutSecs) * time.Second,
	}
}

// PageCount parses the PDF structure without rendering anything.
func (r *Renderer) PageCount(ctx context.Context, pdf []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdf), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return pdfCtx.PageCount, nil
}

// RenderPage rasterizes one 0-based page to PNG at the given DPI.
func (r *Renderer) RenderPage(ctx context.Context, pdf []byte, pageIndex, dpi int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "docsift-pp-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	in := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	pageNr := pageIndex + 1
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png -f <n> -l <n> <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.pdftoppm,
		"-r", strconv.Itoa(dpi), "-png",
		"-f", strconv.Itoa(pageNr), "-l", strconv.Itoa(pageNr),
		in, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %v (%s)", err, strings.TrimSpace(string(errb)))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, errors.New("pdftoppm produced no image")
	}
	img, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	return img, nil
}
