package workflow

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/star-coach/internal/prompts"
	"github.com/jonathan/star-coach/internal/types"
)

const (
	coachingPrompts   = "coaching.json"
	extractionPrompts = "extraction.json"

	// maxJobDescriptionRunes bounds how much of a job description is
	// repeated into every chat system prompt.
	maxJobDescriptionRunes = 2000
)

// Workflow parameterizes the single coaching engine over a document type D
// and its partial-update type U.
type Workflow[D any, U any] struct {
	Name       string
	Order      Order
	UpdatesKey string // JSON key of the updates object in extraction responses

	Empty  func() D
	Merge  func(D, U) D
	Clone  func(D) D
	Derive func(D) Section
}

// Info is the type-erased description of a workflow.
type Info struct {
	Name       string
	Order      Order
	UpdatesKey string
}

// Descriptor is implemented by every Workflow instantiation and lets callers
// that do not know D and U (the HTTP proxy) build prompts by workflow name.
type Descriptor interface {
	Describe() Info
	Greeting(ctx types.CoachingContext) string
	ChatSystemPrompt(section Section, ctx types.CoachingContext) string
	ExtractionPrompt(section Section, ctx types.CoachingContext, turns []types.Turn) string
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (Descriptor, bool) {
	switch name {
	case types.WorkflowStar:
		return Star(), true
	case types.WorkflowTicket:
		return Ticket(), true
	default:
		return nil, false
	}
}

// Describe implements Descriptor.
func (w Workflow[D, U]) Describe() Info {
	return Info{Name: w.Name, Order: w.Order, UpdatesKey: w.UpdatesKey}
}

// Initial returns the section a fresh session starts in.
func (w Workflow[D, U]) Initial() Section {
	return w.Order.First()
}

// Greeting returns the UI-only bootstrap message. When a sample interview
// question is known it is appended so the candidate sees what to answer.
func (w Workflow[D, U]) Greeting(ctx types.CoachingContext) string {
	greeting := prompts.MustGet(coachingPrompts, w.Name+"-greeting")
	if ctx.Competency != nil && ctx.Competency.SampleQuestion != "" {
		greeting += fmt.Sprintf("\n\n**%s:** _%s_", ctx.Competency.Name, ctx.Competency.SampleQuestion)
	}
	return greeting
}

// ChatSystemPrompt builds the system prompt for a coaching reply.
func (w Workflow[D, U]) ChatSystemPrompt(section Section, ctx types.CoachingContext) string {
	var sb strings.Builder
	sb.WriteString(prompts.MustGet(coachingPrompts, w.Name+"-system"))

	if ctx.Competency != nil || ctx.JobTitle != "" {
		sb.WriteString(prompts.MustGet(coachingPrompts, "context-header"))
		if ctx.JobTitle != "" {
			sb.WriteString(prompts.MustRender(coachingPrompts, "context-role",
				map[string]string{"JobTitle": ctx.JobTitle}))
		}
		if c := ctx.Competency; c != nil {
			name := c.Name
			if c.Description != "" {
				name = fmt.Sprintf("%s (%s)", c.Name, c.Description)
			}
			sb.WriteString(prompts.MustRender(coachingPrompts, "context-competency",
				map[string]string{"Competency": name}))
			if c.SampleQuestion != "" {
				sb.WriteString(prompts.MustRender(coachingPrompts, "context-question",
					map[string]string{"Question": c.SampleQuestion}))
			}
		}
		if ctx.JobDescription != "" {
			sb.WriteString(prompts.MustRender(coachingPrompts, "context-job-description",
				map[string]string{"JobDescription": truncateRunes(ctx.JobDescription, maxJobDescriptionRunes)}))
		}
		sb.WriteString(prompts.MustGet(coachingPrompts, "context-footer"))
	}

	if section == "" {
		section = w.Initial()
	}
	sb.WriteString(prompts.MustRender(coachingPrompts, "section-footer",
		map[string]string{"Section": string(section)}))
	return sb.String()
}

// ExtractionPrompt builds the single-shot prompt asking the model for an
// updates document. The conversation is embedded as a transcript.
func (w Workflow[D, U]) ExtractionPrompt(section Section, ctx types.CoachingContext, turns []types.Turn) string {
	var sb strings.Builder
	sb.WriteString(prompts.MustGet(extractionPrompts, w.Name))

	if section == "" {
		section = w.Initial()
	}
	var hints strings.Builder
	if ctx.JobTitle != "" {
		hints.WriteString(" Role: " + ctx.JobTitle + ".")
	}
	if ctx.Competency != nil && ctx.Competency.Name != "" {
		hints.WriteString(" Target competency: " + ctx.Competency.Name + ".")
	}
	sb.WriteString(prompts.MustRender(extractionPrompts, "hints", map[string]string{
		"Section": string(section),
		"Context": hints.String(),
	}))

	sb.WriteString(prompts.MustRender(extractionPrompts, "transcript",
		map[string]string{"Transcript": Transcript(turns)}))
	return sb.String()
}

// Transcript renders turns as "User:" / "Coach:" lines separated by blank lines.
func Transcript(turns []types.Turn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "User"
		if t.Role == types.RoleAssistant {
			speaker = "Coach"
		}
		parts = append(parts, speaker+": "+strings.TrimSpace(t.Content))
	}
	return strings.Join(parts, "\n\n")
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
