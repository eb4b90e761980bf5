package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/star-coach/internal/db"
	"github.com/jonathan/star-coach/internal/rendering"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export [interview|ticket]",
	Short: "Print the last saved session as Markdown",
	Long: `Render the most recent saved session as Markdown: every completed STAR
answer of an interview, or the ticket draft.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{db.KindInterview, db.KindTicket},
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write the Markdown to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	kind := db.KindInterview
	if len(args) == 1 {
		kind = args[0]
	}

	store, err := db.OpenSQLite(settings.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	defer func() { _ = store.Close() }()

	rec, err := db.Latest(cmd.Context(), store, kind)
	if err != nil {
		return fmt.Errorf("failed to load last session: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("no saved %s session in %s", kind, settings.DBPath)
	}

	md, err := renderExport(kind, rec.Payload)
	if err != nil {
		return err
	}

	if exportOut != "" {
		return os.WriteFile(exportOut, []byte(md), 0o644)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), md)
	return err
}

// renderExport turns a stored snapshot payload into Markdown. An interview
// without completed answers exports the answer being coached.
func renderExport(kind string, payload []byte) (string, error) {
	switch kind {
	case db.KindTicket:
		var snap sessionSnapshot[types.Ticket]
		if err := json.Unmarshal(payload, &snap); err != nil {
			return "", fmt.Errorf("failed to decode ticket session: %w", err)
		}
		md := rendering.FormatTicket(snap.Coach.Document)
		if md == "" {
			return "", fmt.Errorf("the ticket is still empty")
		}
		return md + "\n", nil

	case db.KindInterview:
		var snap sessionSnapshot[types.StarAnswer]
		if err := json.Unmarshal(payload, &snap); err != nil {
			return "", fmt.Errorf("failed to decode interview session: %w", err)
		}
		if snap.Interview != nil && len(snap.Interview.CompletedAnswers) > 0 {
			return rendering.ExportMarkdown(snap.Interview.JobTitle, snap.Interview.CompletedAnswers), nil
		}

		doc := snap.Coach.Document
		if doc.IsEmpty() {
			return "", fmt.Errorf("no answers have been captured yet")
		}
		name := "STAR answer"
		if c := snap.Coach.Hints.Competency; c != nil {
			name = c.Name
		}
		return rendering.FormatAnswer(types.CompletedAnswer{CompetencyName: name, Star: doc}), nil

	default:
		return "", fmt.Errorf("unknown session kind %q (want interview or ticket)", kind)
	}
}
