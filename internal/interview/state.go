// Package interview tracks a multi-competency interview preparation session:
// job analysis, competency selection, one coached STAR answer per selected
// competency, and the final export.
package interview

import (
	"slices"

	"github.com/jonathan/star-coach/internal/types"
)

// Phase is the stage of an interview session.
type Phase string

// Session phases, in the order a candidate normally moves through them.
const (
	PhaseInput    Phase = "input"
	PhaseReview   Phase = "review"
	PhaseCoaching Phase = "coaching"
	PhaseComplete Phase = "complete"
)

// State is the persisted interview session.
type State struct {
	JobDescription   string                  `json:"jobDescription"`
	JobTitle         string                  `json:"jobTitle"`
	Competencies     []types.Competency      `json:"competencies"`
	Selected         []string                `json:"selectedCompetencies"`
	CurrentIndex     int                     `json:"currentIndex"`
	CompletedAnswers []types.CompletedAnswer `json:"completedAnswers"`
	Phase            Phase                   `json:"sessionPhase"`
}

// Initial returns the state of a new session.
func Initial() State {
	return State{
		Competencies:     []types.Competency{},
		Selected:         []string{},
		CompletedAnswers: []types.CompletedAnswer{},
		Phase:            PhaseInput,
	}
}

// Progress summarizes how far the candidate is through the selection.
type Progress struct {
	Current   int `json:"current"` // 1-based position of the current competency
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Repair returns st with defaults filled in, or a fresh state when st is
// unusable: an unknown phase, or a phase past input without competencies.
func Repair(st State) (State, bool) {
	switch st.Phase {
	case PhaseInput, PhaseReview, PhaseCoaching, PhaseComplete:
	default:
		return Initial(), true
	}
	if st.Phase != PhaseInput && len(st.Competencies) == 0 {
		return Initial(), true
	}

	if st.Competencies == nil {
		st.Competencies = []types.Competency{}
	}
	if st.Selected == nil {
		st.Selected = []string{}
	}
	if st.CompletedAnswers == nil {
		st.CompletedAnswers = []types.CompletedAnswer{}
	}
	if st.CurrentIndex < 0 || (len(st.Selected) > 0 && st.CurrentIndex >= len(st.Selected)) {
		st.CurrentIndex = 0
	}
	return st, false
}

func (st State) clone() State {
	st.Competencies = slices.Clone(st.Competencies)
	st.Selected = slices.Clone(st.Selected)
	st.CompletedAnswers = slices.Clone(st.CompletedAnswers)
	return st
}

func (st State) competency(id string) (types.Competency, bool) {
	i := slices.IndexFunc(st.Competencies, func(c types.Competency) bool { return c.ID == id })
	if i < 0 {
		return types.Competency{}, false
	}
	return st.Competencies[i], true
}

func (st State) currentID() (string, bool) {
	if st.CurrentIndex < 0 || st.CurrentIndex >= len(st.Selected) {
		return "", false
	}
	return st.Selected[st.CurrentIndex], true
}
