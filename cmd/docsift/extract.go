package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docsift/internal/assembler"
	"docsift/internal/config"
	"docsift/internal/domain"
	"docsift/internal/export"
	"docsift/internal/extractor"
	"docsift/internal/fetcher"
	"docsift/internal/llm"
	_ "docsift/internal/llm/anthropic"
	_ "docsift/internal/llm/groq"
	_ "docsift/internal/llm/openai"
	"docsift/internal/normalizer"
	"docsift/internal/ocr"
	"docsift/internal/service"
	"docsift/internal/sniffer"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract structured fields from a document",
	Long: `Extract runs a PDF or image through the full pipeline and prints the
result as JSON. The document comes from a local file argument or from
an HTTPS URL given with --url.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("url", "", "HTTPS URL of the document to extract")
	extractCmd.Flags().Bool("flat", false, "print a single flattened record instead of the full response")
	extractCmd.Flags().String("export", "", "write results to a file instead of JSON: csv or xlsx")
	extractCmd.Flags().String("out", "", "output file path (default: derived from the input name)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	flat, _ := cmd.Flags().GetBool("flat")
	exportFormat, _ := cmd.Flags().GetString("export")
	out, _ := cmd.Flags().GetString("out")

	if url == "" && len(args) == 0 {
		return fmt.Errorf("either a file argument or --url is required")
	}
	if exportFormat != "" && exportFormat != "csv" && exportFormat != "xlsx" {
		return fmt.Errorf("unsupported export format %q: use csv or xlsx", exportFormat)
	}
	if exportFormat != "" && flat {
		return fmt.Errorf("--flat and --export are mutually exclusive")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// The local-path gate applies to the HTTP server, not the CLI.
	cfg.Fetch.AllowLocalPaths = true

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	var ref domain.DocumentReference
	baseName := "extraction"
	if url != "" {
		// Operator-driven fetches get the larger ingestion ceiling.
		ref = domain.NewIngestURLReference(url)
		if i := strings.LastIndexByte(url, '/'); i >= 0 && i+1 < len(url) {
			baseName = url[i+1:]
		}
	} else {
		ref = domain.NewPathReference(args[0])
		baseName = filepath.Base(args[0])
	}

	ctx := cmd.Context()

	if flat {
		result, err := svc.ExtractFlat(ctx, ref)
		if err != nil {
			return err
		}
		return writeJSON(out, result)
	}

	resp, err := svc.Extract(ctx, ref)
	if err != nil {
		return err
	}

	if exportFormat == "" {
		return writeJSON(out, resp)
	}

	if out == "" {
		out = export.BuildFilename(baseName, exportFormat)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if exportFormat == "xlsx" {
		if err := export.WriteXLSX(f, resp); err != nil {
			return err
		}
	} else {
		if _, err := f.Write(export.BOM); err != nil {
			return err
		}
		w := export.NewWriter(f)
		if err := w.WriteHeader(); err != nil {
			return err
		}
		if err := w.WriteResponse(resp); err != nil {
			return err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	return nil
}

func buildService(cfg *config.Config) (service.ExtractionService, error) {
	structurer, err := llm.NewFromConfig(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize structurer: %w", err)
	}

	fetch := fetcher.New(cfg.Fetch)
	sniff := sniffer.New()
	renderer := ocr.NewRenderer(cfg.OCR)
	norm := normalizer.New(renderer, cfg.Pipeline)
	engine := ocr.NewEngine(cfg.OCR)
	coord := extractor.NewCoordinator(engine, structurer, cfg.Pipeline)
	asm := assembler.New(cfg.Pipeline)

	return service.NewExtractionService(fetch, sniff, norm, coord, asm), nil
}

func writeJSON(out string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	return nil
}
