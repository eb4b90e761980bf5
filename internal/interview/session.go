package interview

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/jonathan/star-coach/internal/rendering"
	"github.com/jonathan/star-coach/internal/types"
	"go.uber.org/zap"
)

// Session is the interview state machine. Every mutation is passed to the
// persist hook as a full copy of the state.
type Session struct {
	mu      sync.Mutex
	saveMu  sync.Mutex // held across mutation and persist
	state   State
	persist func(State)
	logger  *zap.Logger
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

// Option configures a Session.
type Option func(*Session)

// WithPersist sets the hook called after every mutation.
func WithPersist(fn func(State)) Option {
	return func(s *Session) { s.persist = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source for completed answers.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRand sets the random source used by StartCoaching(true).
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.shuffle = r.Shuffle }
}

// NewSession creates a session in the input phase.
func NewSession(opts ...Option) *Session {
	s := &Session{
		state:   Initial(),
		logger:  zap.NewNop(),
		now:     time.Now,
		shuffle: rand.Shuffle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the state with a persisted one. A stale snapshot, one past
// the input phase without competencies, is discarded and the session starts
// over; Load reports whether that happened.
func (s *Session) Load(st State) bool {
	repaired, reset := Repair(st)
	if reset {
		s.logger.Info("resetting stale interview session", zap.String("phase", string(st.Phase)))
	}
	s.update(func(cur *State) { *cur = repaired })
	return reset
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// ApplyAnalysis stores a job analysis, selects every competency and moves to review.
func (s *Session) ApplyAnalysis(jobDescription string, analysis types.JobAnalysis) error {
	if len(analysis.Competencies) == 0 {
		return ErrEmptyAnalysis
	}
	ids := make([]string, len(analysis.Competencies))
	for i, c := range analysis.Competencies {
		ids[i] = c.ID
	}
	s.update(func(st *State) {
		st.JobDescription = jobDescription
		st.JobTitle = analysis.JobTitle
		st.Competencies = slices.Clone(analysis.Competencies)
		st.Selected = ids
		st.CurrentIndex = 0
		st.Phase = PhaseReview
	})
	return nil
}

// ToggleCompetency selects or deselects one competency.
func (s *Session) ToggleCompetency(id string) {
	s.update(func(st *State) {
		if i := slices.Index(st.Selected, id); i >= 0 {
			st.Selected = slices.Delete(st.Selected, i, i+1)
			return
		}
		st.Selected = append(st.Selected, id)
	})
}

// SelectAll selects every competency in analysis order.
func (s *Session) SelectAll() {
	s.update(func(st *State) {
		st.Selected = st.Selected[:0]
		for _, c := range st.Competencies {
			st.Selected = append(st.Selected, c.ID)
		}
	})
}

// DeselectAll clears the selection.
func (s *Session) DeselectAll() {
	s.update(func(st *State) { st.Selected = []string{} })
}

// StartCoaching starts with the first selected competency, optionally after
// shuffling the selection.
func (s *Session) StartCoaching(shuffle bool) error {
	var err error
	s.update(func(st *State) {
		if len(st.Selected) == 0 {
			err = ErrNoSelection
			return
		}
		if shuffle {
			s.shuffle(len(st.Selected), func(i, j int) {
				st.Selected[i], st.Selected[j] = st.Selected[j], st.Selected[i]
			})
		}
		st.CurrentIndex = 0
		st.Phase = PhaseCoaching
	})
	return err
}

// StartWith moves id to the front of the selection and starts coaching it.
func (s *Session) StartWith(id string) error {
	var err error
	s.update(func(st *State) {
		if _, ok := st.competency(id); !ok {
			err = ErrUnknownCompetency
			return
		}
		reordered := make([]string, 0, len(st.Selected)+1)
		reordered = append(reordered, id)
		for _, sel := range st.Selected {
			if sel != id {
				reordered = append(reordered, sel)
			}
		}
		st.Selected = reordered
		st.CurrentIndex = 0
		st.Phase = PhaseCoaching
	})
	return err
}

// CurrentCompetency returns the competency being coached.
func (s *Session) CurrentCompetency() (types.Competency, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.state.currentID()
	if !ok {
		return types.Competency{}, false
	}
	return s.state.competency(id)
}

// Hints returns the context sent with coaching requests for the current competency.
func (s *Session) Hints() types.CoachingContext {
	c, ok := s.CurrentCompetency()
	s.mu.Lock()
	defer s.mu.Unlock()
	hints := types.CoachingContext{JobTitle: s.state.JobTitle, JobDescription: s.state.JobDescription}
	if ok {
		hints.Competency = &c
	}
	return hints
}

// CompleteCurrent records star as the answer for the current competency,
// replacing an earlier answer, and moves on. After the last competency the
// session is complete.
func (s *Session) CompleteCurrent(star types.StarAnswer) error {
	var err error
	s.update(func(st *State) {
		id, ok := st.currentID()
		if st.Phase != PhaseCoaching || !ok {
			err = ErrNotCoaching
			return
		}
		name := id
		if c, ok := st.competency(id); ok {
			name = c.Name
		}
		answer := types.CompletedAnswer{
			CompetencyID:   id,
			CompetencyName: name,
			Star:           star,
			CompletedAt:    s.now().UTC(),
		}

		if i := slices.IndexFunc(st.CompletedAnswers, func(a types.CompletedAnswer) bool { return a.CompetencyID == id }); i >= 0 {
			st.CompletedAnswers[i] = answer
		} else {
			st.CompletedAnswers = append(st.CompletedAnswers, answer)
		}

		if st.CurrentIndex >= len(st.Selected)-1 {
			st.Phase = PhaseComplete
			return
		}
		st.CurrentIndex++
	})
	return err
}

// Next moves to the next competency, or completes the session after the last.
func (s *Session) Next() {
	s.update(func(st *State) {
		if st.CurrentIndex >= len(st.Selected)-1 {
			st.Phase = PhaseComplete
			return
		}
		st.CurrentIndex++
	})
}

// Previous moves to the previous competency. It does nothing on the first.
func (s *Session) Previous() {
	s.update(func(st *State) {
		if st.CurrentIndex > 0 {
			st.CurrentIndex--
		}
	})
}

// GoToList returns to the competency review.
func (s *Session) GoToList() {
	s.update(func(st *State) { st.Phase = PhaseReview })
}

// GoToExport jumps to the export.
func (s *Session) GoToExport() {
	s.update(func(st *State) { st.Phase = PhaseComplete })
}

// Reset discards everything and returns to the input phase.
func (s *Session) Reset() {
	s.update(func(st *State) { *st = Initial() })
}

// Progress returns the position within the selection.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{
		Current:   s.state.CurrentIndex + 1,
		Total:     len(s.state.Selected),
		Completed: len(s.state.CompletedAnswers),
	}
}

// AnswerFor returns the completed answer for a competency.
func (s *Session) AnswerFor(id string) (types.CompletedAnswer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.state.CompletedAnswers {
		if a.CompetencyID == id {
			return a, true
		}
	}
	return types.CompletedAnswer{}, false
}

// ExportMarkdown renders every completed answer.
func (s *Session) ExportMarkdown() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rendering.ExportMarkdown(s.state.JobTitle, s.state.CompletedAnswers)
}

func (s *Session) update(fn func(*State)) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	fn(&s.state)
	snap := s.state.clone()
	s.mu.Unlock()

	if s.persist != nil {
		s.persist(snap)
	}
}
