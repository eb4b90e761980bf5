package interview

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/star-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analysis = types.JobAnalysis{
	JobTitle: "Staff Engineer",
	Competencies: []types.Competency{
		{ID: "ownership", Name: "Ownership", SampleQuestion: "Tell me about a time you owned an outage."},
		{ID: "influence", Name: "Influence"},
		{ID: "delivery", Name: "Delivery"},
	},
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSession(t *testing.T, opts ...Option) (*Session, *[]State) {
	t.Helper()
	var saved []State
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithPersist(func(st State) { saved = append(saved, st) }),
	}, opts...)
	return NewSession(opts...), &saved
}

func TestSession_ApplyAnalysis(t *testing.T) {
	s, saved := newSession(t)

	require.NoError(t, s.ApplyAnalysis("We need a staff engineer...", analysis))

	st := s.State()
	assert.Equal(t, PhaseReview, st.Phase)
	assert.Equal(t, "Staff Engineer", st.JobTitle)
	assert.Equal(t, []string{"ownership", "influence", "delivery"}, st.Selected)
	require.Len(t, *saved, 1)
	assert.Equal(t, PhaseReview, (*saved)[0].Phase)

	assert.ErrorIs(t, s.ApplyAnalysis("x", types.JobAnalysis{JobTitle: "PM"}), ErrEmptyAnalysis)
}

func TestSession_Selection(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.ApplyAnalysis("jd", analysis))

	s.ToggleCompetency("influence")
	assert.Equal(t, []string{"ownership", "delivery"}, s.State().Selected)

	s.ToggleCompetency("influence")
	assert.Equal(t, []string{"ownership", "delivery", "influence"}, s.State().Selected)

	s.DeselectAll()
	assert.Empty(t, s.State().Selected)
	assert.ErrorIs(t, s.StartCoaching(false), ErrNoSelection)

	s.SelectAll()
	assert.Equal(t, []string{"ownership", "influence", "delivery"}, s.State().Selected)
}

func TestSession_StartCoachingShuffled(t *testing.T) {
	s, _ := newSession(t, WithRand(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, s.ApplyAnalysis("jd", analysis))

	require.NoError(t, s.StartCoaching(true))

	st := s.State()
	assert.Equal(t, PhaseCoaching, st.Phase)
	assert.Zero(t, st.CurrentIndex)
	assert.ElementsMatch(t, []string{"ownership", "influence", "delivery"}, st.Selected)
}

func TestSession_StartWith(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.ApplyAnalysis("jd", analysis))

	require.NoError(t, s.StartWith("delivery"))
	assert.Equal(t, []string{"delivery", "ownership", "influence"}, s.State().Selected)

	c, ok := s.CurrentCompetency()
	require.True(t, ok)
	assert.Equal(t, "Delivery", c.Name)

	assert.ErrorIs(t, s.StartWith("nope"), ErrUnknownCompetency)
}

func TestSession_CompleteAll(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.ApplyAnalysis("jd", analysis))
	s.ToggleCompetency("delivery")
	require.NoError(t, s.StartCoaching(false))

	hints := s.Hints()
	require.NotNil(t, hints.Competency)
	assert.Equal(t, "ownership", hints.Competency.ID)
	assert.Equal(t, "Staff Engineer", hints.JobTitle)
	assert.Equal(t, "jd", hints.JobDescription)

	require.NoError(t, s.CompleteCurrent(types.StarAnswer{Situation: "S1"}))
	assert.Equal(t, Progress{Current: 2, Total: 2, Completed: 1}, s.Progress())
	assert.Equal(t, PhaseCoaching, s.State().Phase)

	require.NoError(t, s.CompleteCurrent(types.StarAnswer{Result: "R2"}))
	st := s.State()
	assert.Equal(t, PhaseComplete, st.Phase)
	assert.Equal(t, 1, st.CurrentIndex)

	a, ok := s.AnswerFor("ownership")
	require.True(t, ok)
	assert.Equal(t, "Ownership", a.CompetencyName)
	assert.Equal(t, fixedNow, a.CompletedAt)

	_, ok = s.AnswerFor("delivery")
	assert.False(t, ok)

	assert.ErrorIs(t, s.CompleteCurrent(types.StarAnswer{}), ErrNotCoaching)

	md := s.ExportMarkdown()
	assert.Contains(t, md, "# STAR Interview Answers\n## Staff Engineer")
	assert.Contains(t, md, "## Ownership\n\n**Situation**\nS1\n")
	assert.Contains(t, md, "## Influence\n\n**Result**\nR2\n")
}

func TestSession_CompleteReplacesEarlierAnswer(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.ApplyAnalysis("jd", analysis))
	require.NoError(t, s.StartCoaching(false))

	require.NoError(t, s.CompleteCurrent(types.StarAnswer{Situation: "first"}))
	s.Previous()
	require.NoError(t, s.CompleteCurrent(types.StarAnswer{Situation: "second"}))

	st := s.State()
	require.Len(t, st.CompletedAnswers, 1)
	assert.Equal(t, "second", st.CompletedAnswers[0].Star.Situation)
}

func TestSession_Navigation(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.ApplyAnalysis("jd", analysis))
	require.NoError(t, s.StartCoaching(false))

	s.Previous()
	assert.Zero(t, s.State().CurrentIndex)

	s.Next()
	s.Next()
	assert.Equal(t, 2, s.State().CurrentIndex)
	assert.Equal(t, PhaseCoaching, s.State().Phase)

	s.Next()
	assert.Equal(t, PhaseComplete, s.State().Phase)

	s.GoToList()
	assert.Equal(t, PhaseReview, s.State().Phase)

	s.GoToExport()
	assert.Equal(t, PhaseComplete, s.State().Phase)

	s.Reset()
	assert.Equal(t, Initial(), s.State())
}

func TestSession_LoadRepairsStaleState(t *testing.T) {
	tests := []struct {
		name      string
		in        State
		wantReset bool
		wantPhase Phase
	}{
		{name: "coaching without competencies", in: State{Phase: PhaseCoaching}, wantReset: true, wantPhase: PhaseInput},
		{name: "unknown phase", in: State{Phase: "analyzing"}, wantReset: true, wantPhase: PhaseInput},
		{name: "fresh input", in: State{Phase: PhaseInput, JobDescription: "draft"}, wantPhase: PhaseInput},
		{
			name:      "valid review",
			in:        State{Phase: PhaseReview, Competencies: analysis.Competencies, Selected: []string{"ownership"}},
			wantPhase: PhaseReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(t)
			assert.Equal(t, tt.wantReset, s.Load(tt.in))
			st := s.State()
			assert.Equal(t, tt.wantPhase, st.Phase)
			assert.NotNil(t, st.CompletedAnswers)
		})
	}
}

func TestRepair_ClampsIndex(t *testing.T) {
	st, reset := Repair(State{
		Phase:        PhaseCoaching,
		Competencies: analysis.Competencies,
		Selected:     []string{"ownership"},
		CurrentIndex: 4,
	})
	assert.False(t, reset)
	assert.Zero(t, st.CurrentIndex)
}

func TestSession_PersistGetsCopies(t *testing.T) {
	s, saved := newSession(t)
	require.NoError(t, s.ApplyAnalysis("jd", analysis))

	(*saved)[0].Selected[0] = "mutated"
	assert.Equal(t, "ownership", s.State().Selected[0])
}

func TestSession_ConcurrentUpdatesPersistInOrder(t *testing.T) {
	s, saved := newSession(t)
	require.NoError(t, s.ApplyAnalysis("jd", analysis))
	s.DeselectAll()
	*saved = nil

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ToggleCompetency(fmt.Sprintf("extra-%d", i))
		}()
	}
	wg.Wait()

	require.Len(t, *saved, 20)
	for i, st := range *saved {
		assert.Len(t, st.Selected, i+1, "write %d", i)
	}
	assert.Equal(t, s.State(), (*saved)[19])
}
