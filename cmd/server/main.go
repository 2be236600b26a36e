package main

import (
	"errors"
	"fmt"
	"log"
	"os/exec"

	"github.com/joho/godotenv"

	"docsift/internal/assembler"
	"docsift/internal/config"
	"docsift/internal/extractor"
	"docsift/internal/fetcher"
	"docsift/internal/handler"
	"docsift/internal/llm"
	_ "docsift/internal/llm/anthropic"
	_ "docsift/internal/llm/groq"
	_ "docsift/internal/llm/openai"
	"docsift/internal/normalizer"
	"docsift/internal/ocr"
	"docsift/internal/router"
	"docsift/internal/service"
	"docsift/internal/sniffer"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env if present; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	structurer, err := llm.NewFromConfig(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize structurer: %w", err)
	}

	// Initialize pipeline stages
	fetch := fetcher.New(cfg.Fetch)
	sniff := sniffer.New()
	renderer := ocr.NewRenderer(cfg.OCR)
	norm := normalizer.New(renderer, cfg.Pipeline)
	engine := ocr.NewEngine(cfg.OCR)
	coord := extractor.NewCoordinator(engine, structurer, cfg.Pipeline)
	asm := assembler.New(cfg.Pipeline)

	// Initialize service and handlers
	extractionSvc := service.NewExtractionService(fetch, sniff, norm, coord, asm)
	docH := handler.NewDocumentHandler(extractionSvc)
	healthH := handler.NewHealthHandler(map[string]handler.ReadinessCheck{
		"ocr": func() error {
			if _, err := exec.LookPath(cfg.OCR.TesseractPath); err != nil {
				return fmt.Errorf("tesseract not found at %q", cfg.OCR.TesseractPath)
			}
			return nil
		},
		"llm": func() error {
			if cfg.LLM.PrimaryConfig().APIKey == "" {
				return errors.New("no LLM API key configured")
			}
			return nil
		},
	})

	// Setup router
	r := router.Setup(cfg, docH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
