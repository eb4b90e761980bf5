// Package schemas embeds the JSON Schemas that model output is validated against.
package schemas

import "embed"

// Schema file names.
const (
	JobAnalysis      = "job_analysis.schema.json"
	ExtractionStar   = "extraction_star.schema.json"
	ExtractionTicket = "extraction_ticket.schema.json"
)

// Files holds every *.schema.json in this directory.
//
//go:embed *.schema.json
var Files embed.FS

// Extraction returns the schema file for a workflow's extraction response.
func Extraction(workflow string) string {
	if workflow == "ticket" {
		return ExtractionTicket
	}
	return ExtractionStar
}
