// Package schemas provides JSON Schema validation for model output and stored artifacts.
package schemas

import (
	"fmt"
	"io/fs"
	"strings"

	schemafiles "github.com/jonathan/star-coach/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateEmbedded validates JSON content against one of the embedded schemas,
// e.g. schemafiles.JobAnalysis.
func ValidateEmbedded(name string, jsonContent []byte) error {
	schemaContent, err := fs.ReadFile(schemafiles.Files, name)
	if err != nil {
		return &SchemaLoadError{Path: name, Message: "embedded schema not found", Cause: err}
	}
	return validateBytes(name, schemaContent, jsonContent)
}

func validateBytes(name string, schemaContent, jsonContent []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaContent),
		gojsonschema.NewBytesLoader(jsonContent),
	)
	if err != nil {
		return &SchemaLoadError{
			Path:    name,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return resultError(result)
}

// resultError converts a validation result into a *ValidationError, or nil when valid.
func resultError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
