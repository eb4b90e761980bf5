// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/star-coach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// PrintJobAnalysis outputs the job title and the competencies found.
func (p *Printer) PrintJobAnalysis(analysis *types.JobAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:     %s\n", analysis.JobTitle))
	sb.WriteString(fmt.Sprintf("Found %d competencies:\n\n", len(analysis.Competencies)))

	count := min(len(analysis.Competencies), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := analysis.Competencies[i]
		sb.WriteString(fmt.Sprintf("#%d  %s [%s]\n", i+1, c.Name, c.ID))
		if c.SampleQuestion != "" {
			sb.WriteString(fmt.Sprintf("    Q: %s\n", c.SampleQuestion))
		}
	}
	if len(analysis.Competencies) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more competencies\n", len(analysis.Competencies)-maxItemsToShow))
	}

	p.printBox("JOB ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStarAnswer outputs the STAR sections with a marker for every
// section that has content.
func (p *Printer) PrintStarAnswer(answer *types.StarAnswer) {
	if answer == nil {
		return
	}

	sections := []struct {
		label string
		text  string
		done  bool
	}{
		{"Situation", answer.Situation, answer.HasSituation()},
		{"Task", answer.Task, answer.HasTask()},
		{"Action", answer.Action, answer.HasAction()},
		{"Result", answer.Result, answer.HasResult()},
	}

	var sb strings.Builder
	if answer.Competency != "" {
		sb.WriteString(fmt.Sprintf("Competency: %s\n\n", answer.Competency))
	}
	for _, s := range sections {
		mark := "○"
		if s.done {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, s.label))
		if s.done {
			sb.WriteString(fmt.Sprintf("  %s\n", strings.TrimSpace(s.text)))
		}
	}

	p.printBox("STAR ANSWER", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTicket outputs the ticket draft.
func (p *Printer) PrintTicket(ticket *types.Ticket) {
	if ticket == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Type:     %s (%s)\n", ticket.TicketType, ticket.Format))
	if ticket.Intent != "" {
		sb.WriteString(fmt.Sprintf("Intent:   %s\n", ticket.Intent))
	}
	if ticket.Outcome != "" {
		sb.WriteString(fmt.Sprintf("Outcome:  %s\n", ticket.Outcome))
	}

	writeList(&sb, "In scope", ticket.Scope.Included)
	writeList(&sb, "Out of scope", ticket.Scope.Excluded)
	writeList(&sb, "Success criteria", ticket.SuccessCriteria)
	writeList(&sb, "Constraints", ticket.Constraints)

	p.printBox("TICKET DRAFT", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", title))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintProgress outputs a one-line progress bar for an interview.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(label string, completed, total int) {
	if total <= 0 {
		return
	}
	const width = 20
	filled := min(completed*width/total, width)
	fmt.Fprintf(p.out, "%s [%s%s] %d/%d\n", label,
		strings.Repeat("█", filled), strings.Repeat("░", width-filled), completed, total)
}
