package ocr

import (
	"context"
	"fmt"
	"os"
	"time"

	"docsift/internal/config"
	"docsift/internal/domain"
)

// Engine runs the tesseract binary against page images. It satisfies
// port.OCREngine.
type Engine struct {
	runner    Runner
	binary    string
	languages string
	timeout   time.Duration
}

// NewEngine creates a tesseract-backed OCR engine.
func NewEngine(cfg config.OCRConfig) *Engine {
	return NewEngineWithRunner(cfg, execRunner{})
}

// NewEngineWithRunner creates an Engine with a custom command runner (used in tests).
func NewEngineWithRunner(cfg config.OCRConfig, runner Runner) *Engine {
	binary := cfg.TesseractPath
	if binary == "" {
		binary = "tesseract"
	}
	languages := cfg.Languages
	if languages == "" {
		languages = "eng"
	}
	timeoutSecs := cfg.TimeoutSecs
	if timeoutSecs <= 0 {
		timeoutSecs = 120
	}
	return &Engine{
		runner:    runner,
		binary:    binary,
		languages: languages,
		timeout:   time.Duration(timeoutSecs) * time.Second,
	}
}

// Recognize writes the image to a temp file and runs tesseract over it.
func (e *Engine) Recognize(ctx context.Context, image []byte, format domain.FileType) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	tmp, err := os.CreateTemp("", "docsift-page-*."+string(format))
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp image: %w", err)
	}

	// tesseract <file> stdout -l <lang>
	out, _, err := e.runner.Run(ctx, e.binary, tmp.Name(), "stdout", "-l", e.languages)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}
