package types

// Ticket types and formats used as defaults for a fresh ticket.
const (
	DefaultTicketType   = "story"
	DefaultTicketFormat = "structured"
)

// Scope lists what a ticket includes and explicitly leaves out.
type Scope struct {
	Included []string `json:"included"`
	Excluded []string `json:"excluded"`
}

// Ticket is the structured work ticket built up by the ticket coaching workflow.
type Ticket struct {
	Intent          string   `json:"intent"`
	Outcome         string   `json:"outcome"`
	Scope           Scope    `json:"scope"`
	SuccessCriteria []string `json:"successCriteria"`
	Constraints     []string `json:"constraints"`
	TicketType      string   `json:"ticketType"`
	WorkTypes       []string `json:"workTypes"`
	Format          string   `json:"format"`
}

// ScopeUpdates is a partial Scope. A nil list falls back to the previous list.
type ScopeUpdates struct {
	Included []string `json:"included"`
	Excluded []string `json:"excluded"`
}

// TicketUpdates is a partial Ticket returned by the extraction model.
// List fields replace the previous list wholesale when present.
type TicketUpdates struct {
	Intent          *string       `json:"intent"`
	Outcome         *string       `json:"outcome"`
	Scope           *ScopeUpdates `json:"scope"`
	SuccessCriteria []string      `json:"successCriteria"`
	Constraints     []string      `json:"constraints"`
	TicketType      *string       `json:"ticketType"`
	WorkTypes       []string      `json:"workTypes"`
	Format          *string       `json:"format"`
}

// NewTicket returns the empty initial ticket.
func NewTicket() Ticket {
	return Ticket{
		Scope:           Scope{Included: []string{}, Excluded: []string{}},
		SuccessCriteria: []string{},
		Constraints:     []string{},
		TicketType:      DefaultTicketType,
		WorkTypes:       []string{},
		Format:          DefaultTicketFormat,
	}
}

// Apply merges updates into a copy of the ticket. Slices in the result never
// alias slices of the update or of the receiver.
func (t Ticket) Apply(u TicketUpdates) Ticket {
	next := t.Clone()

	next.Intent = mergeString(t.Intent, u.Intent)
	next.Outcome = mergeString(t.Outcome, u.Outcome)

	if u.Scope != nil {
		if u.Scope.Included != nil {
			next.Scope.Included = cloneStrings(u.Scope.Included)
		}
		if u.Scope.Excluded != nil {
			next.Scope.Excluded = cloneStrings(u.Scope.Excluded)
		}
	}
	if u.SuccessCriteria != nil {
		next.SuccessCriteria = cloneStrings(u.SuccessCriteria)
	}
	if u.Constraints != nil {
		next.Constraints = cloneStrings(u.Constraints)
	}
	if u.WorkTypes != nil {
		next.WorkTypes = cloneStrings(u.WorkTypes)
	}

	next.TicketType = mergeString(t.TicketType, u.TicketType)
	next.Format = mergeString(t.Format, u.Format)
	return next
}

// Clone returns a deep copy of the ticket.
func (t Ticket) Clone() Ticket {
	t.Scope = Scope{
		Included: cloneStrings(t.Scope.Included),
		Excluded: cloneStrings(t.Scope.Excluded),
	}
	t.SuccessCriteria = cloneStrings(t.SuccessCriteria)
	t.Constraints = cloneStrings(t.Constraints)
	t.WorkTypes = cloneStrings(t.WorkTypes)
	return t
}

// HasScope reports whether any in-scope or out-of-scope item has been captured.
func (t Ticket) HasScope() bool {
	return len(t.Scope.Included) > 0 || len(t.Scope.Excluded) > 0
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
