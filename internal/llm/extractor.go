// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "CompetencyAnalysis")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
	Rules       []string      // Replaces the default verbatim-extraction rules when set
	InputLabel  string        // Heading for the input text; defaults to "Input text"
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

var defaultExtractionRules = []string{
	"Extract information directly from the text, do not invent or summarize.",
	"Return ONLY the JSON object, no markdown, no explanation, no code blocks.",
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	rules := schema.Rules
	if len(rules) == 0 {
		rules = defaultExtractionRules
	}
	sb.WriteString("IMPORTANT:\n")
	for _, rule := range rules {
		sb.WriteString("- ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	label := schema.InputLabel
	if label == "" {
		label = "Input text"
	}
	sb.WriteString(label)
	sb.WriteString(":\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// CompetencyAnalysisSchema returns the extraction schema for turning a job
// description into interview competencies. description is the task preamble.
func CompetencyAnalysisSchema(description string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "CompetencyAnalysis",
		Description: description,
		InputLabel:  "Job description",
		Fields: []SchemaField{
			{
				Name:        "jobTitle",
				Type:        "\"string\"",
				Description: "Job title, extracted or inferred",
				Required:    true,
			},
			{
				Name:        "competencies",
				Type:        "[{\"id\": \"kebab-case-id\", \"name\": \"string\", \"description\": \"string\", \"sampleQuestion\": \"string\"}]",
				Description: "4-8 behavioral competencies ordered by importance, each with a STAR-style sample question",
				Required:    true,
			},
		},
		Rules: []string{
			"Infer competencies that are strongly implied, not only those named explicitly.",
			"Sample questions use the form \"Tell me about a time when...\" and are answerable with one story.",
			"Return ONLY the JSON object, no markdown, no explanation, no code blocks.",
		},
	}
}
