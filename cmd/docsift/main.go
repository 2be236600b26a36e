// Package main is the entry point for the docsift CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docsift CLI.
var rootCmd = &cobra.Command{
	Use:   "docsift",
	Short: "Extract structured fields from identity and legal documents",
	Long: `docsift runs the document extraction pipeline from the command line:
fetch or read a PDF or image, OCR and structure its pages, and print the
categorized fields as JSON or write them to a CSV/XLSX file.

Configuration comes from DOCSIFT_* environment variables (and .env if
present), the same as the server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
