package workflow

import (
	"testing"

	"github.com/jonathan/star-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	star, ok := Lookup(types.WorkflowStar)
	require.True(t, ok)
	assert.Equal(t, "starUpdates", star.Describe().UpdatesKey)
	assert.Equal(t, StarOrder, star.Describe().Order)

	ticket, ok := Lookup(types.WorkflowTicket)
	require.True(t, ok)
	assert.Equal(t, "ticketUpdates", ticket.Describe().UpdatesKey)

	_, ok = Lookup("essay")
	assert.False(t, ok)
}

func TestInitial(t *testing.T) {
	assert.Equal(t, Situation, Star().Initial())
	assert.Equal(t, Intent, Ticket().Initial())
}

func TestChatSystemPrompt(t *testing.T) {
	ctx := types.CoachingContext{
		JobTitle: "Staff Engineer",
		Competency: &types.Competency{
			ID:             "leadership",
			Name:           "Leadership",
			Description:    "Leading teams",
			SampleQuestion: "Tell me about a time you led a team.",
		},
	}

	prompt := Star().ChatSystemPrompt(Task, ctx)

	assert.Contains(t, prompt, "STAR")
	assert.Contains(t, prompt, "- Role: Staff Engineer")
	assert.Contains(t, prompt, "Leadership (Leading teams)")
	assert.Contains(t, prompt, `"Tell me about a time you led a team."`)
	assert.Contains(t, prompt, `up to "task"`)
}

func TestChatSystemPrompt_NoContext(t *testing.T) {
	prompt := Ticket().ChatSystemPrompt("", types.CoachingContext{})

	assert.NotContains(t, prompt, "CONTEXT:")
	assert.Contains(t, prompt, `up to "intent"`)
}

func TestExtractionPrompt(t *testing.T) {
	turns := []types.Turn{
		{Role: types.RoleUser, Content: "Our dashboard took 8 seconds to load."},
		{Role: types.RoleAssistant, Content: "What was your role?"},
		{Role: types.RoleUser, Content: "I was tech lead."},
	}
	ctx := types.CoachingContext{Competency: &types.Competency{Name: "Ownership"}}

	prompt := Star().ExtractionPrompt(Task, ctx, turns)

	assert.Contains(t, prompt, `"starUpdates"`)
	assert.Contains(t, prompt, "Current section: task.")
	assert.Contains(t, prompt, "Target competency: Ownership.")
	assert.Contains(t, prompt, "User: Our dashboard took 8 seconds to load.\n\nCoach: What was your role?\n\nUser: I was tech lead.")
}

func TestGreeting(t *testing.T) {
	plain := Ticket().Greeting(types.CoachingContext{})
	assert.Contains(t, plain, "What problem are we trying to solve")

	withQuestion := Star().Greeting(types.CoachingContext{
		Competency: &types.Competency{Name: "Ambiguity", SampleQuestion: "Tell me about a time requirements were unclear."},
	})
	assert.Contains(t, withQuestion, "**Ambiguity:** _Tell me about a time requirements were unclear._")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab...", truncateRunes("abcdef", 2))
	assert.Equal(t, "éé...", truncateRunes("éééé", 2))
}
