// Package workflow defines the guided coaching workflows: their ordered
// sections, document merge and derivation rules, and prompt composition.
package workflow

// Section is one step in a workflow's fixed topic order.
type Section string

// STAR sections.
const (
	Situation Section = "situation"
	Task      Section = "task"
	Action    Section = "action"
	Result    Section = "result"
)

// Ticket sections.
const (
	Intent      Section = "intent"
	Outcome     Section = "outcome"
	Scope       Section = "scope"
	Success     Section = "success"
	Constraints Section = "constraints"
)

// Complete is the terminal section shared by every workflow.
const Complete Section = "complete"

// Order is the total order of a workflow's sections, first to last.
type Order []Section

// Index returns the position of s in the order, or -1 if s is unknown.
func (o Order) Index(s Section) int {
	for i, candidate := range o {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s belongs to the order.
func (o Order) Valid(s Section) bool {
	return o.Index(s) >= 0
}

// First returns the initial section.
func (o Order) First() Section {
	if len(o) == 0 {
		return ""
	}
	return o[0]
}

// Max returns the further-advanced of a and b. Unknown sections rank below
// every known one; when both are unknown a is returned.
func (o Order) Max(a, b Section) Section {
	if o.Index(b) > o.Index(a) {
		return b
	}
	return a
}
