package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/star-coach/internal/ingestion"
	"github.com/jonathan/star-coach/internal/observability"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/spf13/cobra"
)

var (
	analyzeURL  string
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [job-description-file]",
	Short: "List the interview competencies of a job description",
	Long: `Analyse a job description and list the behavioural competencies an
interview for the role is likely to assess, each with a sample question.

The description is read from a text or PDF file, from stdin ("-" or no
argument), or fetched from --url.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "Job posting URL to fetch instead of a file")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	be, err := newBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	req, err := jobRequest(ctx, be, path, analyzeURL, cmd.InOrStdin())
	if err != nil {
		return err
	}

	analysis, err := be.AnalyzeJob(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to analyse job description: %w", err)
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}
	observability.NewPrinter(out).PrintJobAnalysis(analysis)
	return nil
}

// jobRequest builds an analysis request from a URL, a PDF or text file, or
// stdin when path is "" or "-".
func jobRequest(ctx context.Context, be backend, path, url string, stdin io.Reader) (types.AnalyzeRequest, error) {
	if url != "" {
		if path != "" {
			return types.AnalyzeRequest{}, fmt.Errorf("use either a file or --url, not both")
		}
		return types.AnalyzeRequest{JobURL: url}, nil
	}

	switch {
	case path == "" || path == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return types.AnalyzeRequest{}, fmt.Errorf("failed to read job description: %w", err)
		}
		return types.AnalyzeRequest{JobDescription: ingestion.CleanText(string(data))}, nil

	case strings.EqualFold(filepath.Ext(path), ".pdf"):
		data, err := os.ReadFile(path)
		if err != nil {
			return types.AnalyzeRequest{}, fmt.Errorf("failed to read job description: %w", err)
		}
		text, err := be.ParsePDF(ctx, data, filepath.Base(path))
		if err != nil {
			return types.AnalyzeRequest{}, fmt.Errorf("failed to read PDF: %w", err)
		}
		return types.AnalyzeRequest{JobDescription: text}, nil

	default:
		text, _, err := ingestion.IngestFromFile(path)
		if err != nil {
			return types.AnalyzeRequest{}, fmt.Errorf("failed to read job description: %w", err)
		}
		return types.AnalyzeRequest{JobDescription: text}, nil
	}
}
