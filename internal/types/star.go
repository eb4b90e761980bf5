// Package types provides type definitions for structured data used throughout the star-coach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// StarAnswer is the structured Situation/Task/Action/Result interview answer.
// An empty string means the field has not been captured yet.
type StarAnswer struct {
	Situation  string `json:"situation"`
	Task       string `json:"task"`
	Action     string `json:"action"`
	Result     string `json:"result"`
	Competency string `json:"competency"`
	JobContext string `json:"jobContext"`
}

// StarUpdates is a partial StarAnswer returned by the extraction model.
// A nil field carries no information and never clears existing content.
type StarUpdates struct {
	Situation  *string `json:"situation"`
	Task       *string `json:"task"`
	Action     *string `json:"action"`
	Result     *string `json:"result"`
	Competency *string `json:"competency"`
	JobContext *string `json:"jobContext"`
}

// NewStarAnswer returns the empty initial STAR answer.
func NewStarAnswer() StarAnswer {
	return StarAnswer{}
}

// Apply merges updates into a copy of the answer.
func (s StarAnswer) Apply(u StarUpdates) StarAnswer {
	s.Situation = mergeString(s.Situation, u.Situation)
	s.Task = mergeString(s.Task, u.Task)
	s.Action = mergeString(s.Action, u.Action)
	s.Result = mergeString(s.Result, u.Result)
	s.Competency = mergeString(s.Competency, u.Competency)
	s.JobContext = mergeString(s.JobContext, u.JobContext)
	return s
}

// HasSituation reports whether the situation has been captured.
func (s StarAnswer) HasSituation() bool { return strings.TrimSpace(s.Situation) != "" }

// HasTask reports whether the task has been captured.
func (s StarAnswer) HasTask() bool { return strings.TrimSpace(s.Task) != "" }

// HasAction reports whether the action has been captured.
func (s StarAnswer) HasAction() bool { return strings.TrimSpace(s.Action) != "" }

// HasResult reports whether the result has been captured.
func (s StarAnswer) HasResult() bool { return strings.TrimSpace(s.Result) != "" }

// IsEmpty reports whether none of the four STAR elements has content.
func (s StarAnswer) IsEmpty() bool {
	return !s.HasSituation() && !s.HasTask() && !s.HasAction() && !s.HasResult()
}

// mergeString returns the update when it carries content, otherwise the previous value.
// Whitespace-only updates count as "no information" so a captured field is never erased.
func mergeString(prev string, update *string) string {
	if update == nil || strings.TrimSpace(*update) == "" {
		return prev
	}
	return *update
}
