// Package rendering formats finished coaching documents as Markdown for
// copying into notes or an issue tracker.
package rendering

import (
	"strings"

	"github.com/jonathan/star-coach/internal/types"
)

// ExportHeading is the first line of an interview export.
const ExportHeading = "# STAR Interview Answers"

// answerSeparator sits between answers in an export.
const answerSeparator = "\n---\n\n"

// FormatAnswer renders one completed answer. Blank STAR elements are left out.
func FormatAnswer(answer types.CompletedAnswer) string {
	var sb strings.Builder
	sb.WriteString("## ")
	sb.WriteString(answer.CompetencyName)
	sb.WriteString("\n")

	for _, part := range []struct{ label, text string }{
		{"Situation", answer.Star.Situation},
		{"Task", answer.Star.Task},
		{"Action", answer.Star.Action},
		{"Result", answer.Star.Result},
	} {
		text := strings.TrimSpace(part.text)
		if text == "" {
			continue
		}
		sb.WriteString("\n**")
		sb.WriteString(part.label)
		sb.WriteString("**\n")
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// ExportMarkdown renders every completed answer under a heading for the role.
func ExportMarkdown(jobTitle string, answers []types.CompletedAnswer) string {
	var sb strings.Builder
	sb.WriteString(ExportHeading)
	sb.WriteString("\n## ")
	sb.WriteString(jobTitle)
	sb.WriteString("\n\n---\n\n")

	for i, a := range answers {
		if i > 0 {
			sb.WriteString(answerSeparator)
		}
		sb.WriteString(FormatAnswer(a))
	}
	return sb.String()
}

// FormatTicket renders a ticket in the layout most trackers accept. Success
// criteria become a checklist. Empty parts are left out.
func FormatTicket(t types.Ticket) string {
	var parts []string

	if s := strings.TrimSpace(t.Intent); s != "" {
		parts = append(parts, "### Intent\n"+s)
	}
	if s := strings.TrimSpace(t.Outcome); s != "" {
		parts = append(parts, "### Outcome\n"+s)
	}
	if t.HasScope() {
		scope := "### Scope"
		if len(t.Scope.Included) > 0 {
			scope += "\n**In scope:**\n" + bullets(t.Scope.Included, "- ")
		}
		if len(t.Scope.Excluded) > 0 {
			scope += "\n\n**Out of scope:**\n" + bullets(t.Scope.Excluded, "- ")
		}
		parts = append(parts, scope)
	}
	if len(t.SuccessCriteria) > 0 {
		parts = append(parts, "### Success Criteria\n"+bullets(t.SuccessCriteria, "- [ ] "))
	}
	if len(t.Constraints) > 0 {
		parts = append(parts, "### Constraints\n"+bullets(t.Constraints, "- "))
	}
	return strings.Join(parts, "\n\n")
}

func bullets(items []string, marker string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = marker + item
	}
	return strings.Join(lines, "\n")
}
