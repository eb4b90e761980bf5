package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt_DefaultRules(t *testing.T) {
	schema := ExtractionSchema{
		Description: "Extract the title.",
		Fields:      []SchemaField{{Name: "title", Required: true}},
	}

	prompt := BuildExtractionPrompt(schema, "Senior Engineer")

	assert.Contains(t, prompt, "Extract the title.")
	assert.Contains(t, prompt, `"title": string (required)`)
	assert.Contains(t, prompt, "do not invent or summarize")
	assert.Contains(t, prompt, "Input text:\n\"\"\"\nSenior Engineer\n\"\"\"")
}

func TestCompetencyAnalysisSchema(t *testing.T) {
	prompt := BuildExtractionPrompt(CompetencyAnalysisSchema("Analyze the role."), "We need a leader.")

	assert.Contains(t, prompt, "Analyze the role.")
	assert.Contains(t, prompt, `"jobTitle"`)
	assert.Contains(t, prompt, `"competencies"`)
	assert.Contains(t, prompt, "Tell me about a time when")
	assert.NotContains(t, prompt, "do not invent or summarize")
	assert.Contains(t, prompt, "Job description:\n\"\"\"\nWe need a leader.")
}
