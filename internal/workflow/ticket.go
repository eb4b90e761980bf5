package workflow

import (
	"strings"

	"github.com/jonathan/star-coach/internal/types"
)

// TicketOrder is the ticket section order.
var TicketOrder = Order{Intent, Outcome, Scope, Success, Constraints, Complete}

// Ticket returns the work-ticket workflow.
func Ticket() Workflow[types.Ticket, types.TicketUpdates] {
	return Workflow[types.Ticket, types.TicketUpdates]{
		Name:       types.WorkflowTicket,
		Order:      TicketOrder,
		UpdatesKey: "ticketUpdates",
		Empty:      types.NewTicket,
		Merge:      types.Ticket.Apply,
		Clone:      types.Ticket.Clone,
		Derive:     DeriveTicket,
	}
}

// DeriveTicket returns the section the captured fields point to. Constraints
// are optional, so intent, outcome, scope and one success criterion complete
// a ticket.
func DeriveTicket(t types.Ticket) Section {
	hasIntent := strings.TrimSpace(t.Intent) != ""
	hasOutcome := strings.TrimSpace(t.Outcome) != ""
	hasScope := t.HasScope()
	hasSuccess := len(t.SuccessCriteria) > 0

	switch {
	case hasIntent && hasOutcome && hasScope && hasSuccess:
		return Complete
	case hasIntent && hasOutcome && hasScope:
		return Success
	case hasIntent && hasOutcome:
		return Scope
	case hasIntent:
		return Outcome
	default:
		return Intent
	}
}
