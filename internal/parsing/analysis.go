// Package parsing turns a job description into the competencies a
// behavioral interview for that role is likely to assess.
package parsing

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/star-coach/internal/ingestion"
	"github.com/jonathan/star-coach/internal/llm"
	"github.com/jonathan/star-coach/internal/prompts"
	"github.com/jonathan/star-coach/internal/schemas"
	"github.com/jonathan/star-coach/internal/types"
	schemafiles "github.com/jonathan/star-coach/schemas"
)

// MinJobDescriptionLength is the shortest description worth analysing, in characters.
const MinJobDescriptionLength = 50

// AnalyzeJobDescription asks the model for the job title and 4-8 behavioral
// competencies with sample questions. The response is validated against the
// job analysis schema and competency IDs are normalized to unique kebab case.
func AnalyzeJobDescription(ctx context.Context, client llm.Client, jobDescription string) (*types.JobAnalysis, error) {
	text := ingestion.CleanText(jobDescription)
	if utf8.RuneCountInString(text) < MinJobDescriptionLength {
		return nil, &ValidationError{
			Field:   "jobDescription",
			Message: "please provide a job description (at least 50 characters)",
		}
	}

	responseText, err := client.GenerateJSON(ctx, buildAnalysisPrompt(text), llm.TierStandard)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to analyse job description",
			Cause:   err,
		}
	}

	analysis, err := parseAnalysis(llm.CleanJSONBlock(responseText))
	if err != nil {
		return nil, err
	}

	analysis.JobTitle = strings.TrimSpace(analysis.JobTitle)
	analysis.Competencies = NormalizeCompetencies(analysis.Competencies)
	return analysis, nil
}

func buildAnalysisPrompt(jobText string) string {
	schema := llm.CompetencyAnalysisSchema(prompts.MustGet("analysis.json", "analyze-jd"))
	return llm.BuildExtractionPrompt(schema, jobText)
}

// parseAnalysis decodes and validates the model's JSON
func parseAnalysis(jsonText string) (*types.JobAnalysis, error) {
	var analysis types.JobAnalysis
	if err := json.Unmarshal([]byte(jsonText), &analysis); err != nil {
		return nil, &ParseError{
			Message: "failed to parse competency analysis",
			Cause:   err,
		}
	}

	if err := schemas.ValidateEmbedded(schemafiles.JobAnalysis, []byte(jsonText)); err != nil {
		return nil, &ParseError{
			Message: "invalid analysis response structure",
			Cause:   err,
		}
	}
	return &analysis, nil
}
