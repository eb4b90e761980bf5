package schemas

import (
	"testing"

	schemafiles "github.com/jonathan/star-coach/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const competencySchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "string"},
		"name": {"type": "string"}
	}
}`

func TestValidateBytes(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{name: "valid", doc: `{"id": "leadership", "name": "Leadership"}`},
		{name: "missing field", doc: `{"id": "leadership"}`, wantField: "(root)"},
		{name: "wrong type", doc: `{"id": 7, "name": "Leadership"}`, wantField: "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBytes("competency", []byte(competencySchema), []byte(tt.doc))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.wantField, validationErr.Errors[0].Field)
		})
	}
}

func TestValidateBytes_MalformedDocument(t *testing.T) {
	err := validateBytes("competency", []byte(competencySchema), []byte("{ invalid json }"))

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "competency", loadErr.Path)
}

func TestValidateBytes_NestedField(t *testing.T) {
	schema := `{
		"type": "object",
		"properties": {
			"competency": {
				"type": "object",
				"required": ["name"],
				"properties": {"name": {"type": "string"}}
			}
		}
	}`

	err := validateBytes("nested", []byte(schema), []byte(`{"competency": {}}`))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "competency", validationErr.Errors[0].Field)
}

func TestValidateEmbedded(t *testing.T) {
	tests := []struct {
		name      string
		schema    string
		doc       string
		wantError bool
	}{
		{
			name:   "valid analysis",
			schema: schemafiles.JobAnalysis,
			doc:    `{"jobTitle":"SRE","competencies":[{"id":"ownership","name":"Ownership"}]}`,
		},
		{
			name:      "analysis missing competencies",
			schema:    schemafiles.JobAnalysis,
			doc:       `{"jobTitle":"SRE"}`,
			wantError: true,
		},
		{
			name:   "star extraction with nulls",
			schema: schemafiles.ExtractionStar,
			doc:    `{"starUpdates":{"situation":"s","action":null},"suggestedSection":"task","isComplete":false}`,
		},
		{
			name:      "ticket extraction with wrong list type",
			schema:    schemafiles.ExtractionTicket,
			doc:       `{"ticketUpdates":{"constraints":"none"}}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbedded(tt.schema, []byte(tt.doc))
			if tt.wantError {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.NotEmpty(t, validationErr.Errors)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmbedded_UnknownSchema(t *testing.T) {
	err := ValidateEmbedded("missing.schema.json", []byte(`{}`))

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "missing.schema.json")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "age")
}
