package tui

import (
	"fmt"
	"strings"

	"github.com/jonathan/star-coach/internal/types"
	"github.com/jonathan/star-coach/internal/workflow"
)

// PanelFunc renders the side panel for a document and the current section.
type PanelFunc[D any] func(doc D, section workflow.Section) string

type panelRow struct {
	section workflow.Section
	label   string
	body    string
}

// StarPanel lists the STAR elements with their captured text.
func StarPanel(doc types.StarAnswer, section workflow.Section) string {
	return renderPanel(defaultStyles(), workflow.StarOrder, section, []panelRow{
		{workflow.Situation, "Situation", doc.Situation},
		{workflow.Task, "Task", doc.Task},
		{workflow.Action, "Action", doc.Action},
		{workflow.Result, "Result", doc.Result},
	})
}

// TicketPanel lists the ticket fields with their captured values.
func TicketPanel(doc types.Ticket, section workflow.Section) string {
	var scope []string
	if len(doc.Scope.Included) > 0 {
		scope = append(scope, "In: "+strings.Join(doc.Scope.Included, ", "))
	}
	if len(doc.Scope.Excluded) > 0 {
		scope = append(scope, "Out: "+strings.Join(doc.Scope.Excluded, ", "))
	}

	out := renderPanel(defaultStyles(), workflow.TicketOrder, section, []panelRow{
		{workflow.Intent, "Intent", doc.Intent},
		{workflow.Outcome, "Outcome", doc.Outcome},
		{workflow.Scope, "Scope", strings.Join(scope, "\n")},
		{workflow.Success, "Success criteria", listBody(doc.SuccessCriteria)},
		{workflow.Constraints, "Constraints", listBody(doc.Constraints)},
	})
	return out + "\n" + defaultStyles().muted.Render(fmt.Sprintf("%s · %s", doc.TicketType, doc.Format))
}

func listBody(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "• " + strings.Join(items, "\n• ")
}

// renderPanel marks rows before the current section, or with content, as
// done and the current section's row as active.
func renderPanel(st styles, order workflow.Order, current workflow.Section, rows []panelRow) string {
	currentIdx := order.Index(current)

	var sb strings.Builder
	for i, row := range rows {
		body := strings.TrimSpace(row.body)
		idx := order.Index(row.section)

		var head string
		switch {
		case row.section == current:
			head = st.current.Render("▸ " + row.label)
		case body != "" || (currentIdx >= 0 && idx < currentIdx):
			head = st.done.Render("✓ " + row.label)
		default:
			head = st.muted.Render("○ " + row.label)
		}
		sb.WriteString(head)
		sb.WriteString("\n")
		if body != "" {
			sb.WriteString(body)
			sb.WriteString("\n")
		}
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}
	if current == workflow.Complete {
		sb.WriteString("\n")
		sb.WriteString(st.done.Render("Complete"))
	}
	return strings.TrimRight(sb.String(), "\n")
}
