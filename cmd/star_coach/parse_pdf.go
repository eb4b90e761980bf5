package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var parsePDFOut string

var parsePDFCmd = &cobra.Command{
	Use:   "parse-pdf <file.pdf>",
	Short: "Extract the text of a job description PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runParsePDF,
}

func init() {
	parsePDFCmd.Flags().StringVarP(&parsePDFOut, "out", "o", "", "Write the text to a file instead of stdout")
	rootCmd.AddCommand(parsePDFCmd)
}

func runParsePDF(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read PDF: %w", err)
	}

	be, err := newBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	text, err := be.ParsePDF(cmd.Context(), data, filepath.Base(args[0]))
	if err != nil {
		return fmt.Errorf("failed to extract PDF text: %w", err)
	}

	if parsePDFOut != "" {
		if err := os.WriteFile(parsePDFOut, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
