package types

import "time"

// Competency is a behavioural competency a job description is likely to assess.
type Competency struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	SampleQuestion string `json:"sampleQuestion,omitempty"`
}

// JobAnalysis is the result of analysing a job description.
type JobAnalysis struct {
	JobTitle     string       `json:"jobTitle"`
	Competencies []Competency `json:"competencies"`
}

// CompletedAnswer is a finished STAR answer for one competency.
type CompletedAnswer struct {
	CompetencyID   string     `json:"competencyId"`
	CompetencyName string     `json:"competencyName"`
	Star           StarAnswer `json:"star"`
	CompletedAt    time.Time  `json:"completedAt"`
}

// CoachingContext carries the static hints sent with every chat and extraction request.
type CoachingContext struct {
	Competency     *Competency `json:"competency,omitempty"`
	JobTitle       string      `json:"jobTitle,omitempty"`
	JobDescription string      `json:"jobDescription,omitempty"`
}
