package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/star-coach/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintJobAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobAnalysis(&types.JobAnalysis{
		JobTitle: "Staff Engineer",
		Competencies: []types.Competency{
			{ID: "ownership", Name: "Ownership", SampleQuestion: "Tell me about an outage."},
			{ID: "influence", Name: "Influence"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "JOB ANALYSIS")
	assert.Contains(t, output, "Staff Engineer")
	assert.Contains(t, output, "Found 2 competencies")
	assert.Contains(t, output, "#1  Ownership [ownership]")
	assert.Contains(t, output, "Q: Tell me about an outage.")
}

func TestPrintJobAnalysis_Truncates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	comps := make([]types.Competency, 7)
	for i := range comps {
		comps[i] = types.Competency{ID: "c", Name: "Competency"}
	}
	p.PrintJobAnalysis(&types.JobAnalysis{JobTitle: "PM", Competencies: comps})

	assert.Contains(t, buf.String(), "... and 2 more competencies")
}

func TestPrintNil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobAnalysis(nil)
	p.PrintStarAnswer(nil)
	p.PrintTicket(nil)
	p.PrintProgress("Progress", 0, 0)

	assert.Empty(t, buf.String())
}

func TestPrintStarAnswer(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStarAnswer(&types.StarAnswer{
		Competency: "Ownership",
		Situation:  "Checkout was down",
		Action:     "   ",
	})
	output := buf.String()

	assert.Contains(t, output, "STAR ANSWER")
	assert.Contains(t, output, "Competency: Ownership")
	assert.Contains(t, output, "✓ Situation")
	assert.Contains(t, output, "Checkout was down")
	assert.Contains(t, output, "○ Action")
	assert.Contains(t, output, "○ Result")
}

func TestPrintTicket(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ticket := types.NewTicket()
	ticket.Intent = "Let admins export audit logs"
	ticket.Scope.Included = []string{"CSV export"}
	ticket.SuccessCriteria = []string{"a", "b", "c", "d", "e", "f"}

	p.PrintTicket(&ticket)
	output := buf.String()

	assert.Contains(t, output, "TICKET DRAFT")
	assert.Contains(t, output, "story (structured)")
	assert.Contains(t, output, "Let admins export audit logs")
	assert.Contains(t, output, "In scope:")
	assert.Contains(t, output, "• CSV export")
	assert.Contains(t, output, "... and 1 more")
	assert.NotContains(t, output, "Constraints:")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	for _, line := range lines {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProgress("Answers", 1, 4)

	assert.Equal(t, "Answers [█████░░░░░░░░░░░░░░░] 1/4\n", buf.String())
}
