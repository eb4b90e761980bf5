package interview

import "errors"

var (
	// ErrNoSelection is returned when coaching starts with no competency selected.
	ErrNoSelection = errors.New("no competency selected")
	// ErrUnknownCompetency is returned for an ID the analysis did not produce.
	ErrUnknownCompetency = errors.New("unknown competency")
	// ErrNotCoaching is returned when an answer is completed outside the coaching phase.
	ErrNotCoaching = errors.New("session is not coaching")
	// ErrEmptyAnalysis is returned when an analysis has no competencies.
	ErrEmptyAnalysis = errors.New("analysis has no competencies")
)
