// Package extraction re-derives the structured document and the workflow
// section from the full conversation after every assistant turn.
package extraction

import (
	"bytes"
	"encoding/json"

	"github.com/jonathan/star-coach/internal/llm"
	"github.com/jonathan/star-coach/internal/workflow"
)

// Result is a decoded extraction response. Updates is nil when the model
// returned no updates object (or null).
type Result[U any] struct {
	Updates          *U
	SuggestedSection workflow.Section
	IsComplete       bool
}

// Decode parses an extraction response body. Code fences and surrounding
// prose are stripped first. updatesKey names the updates object, e.g. "starUpdates".
func Decode[U any](body []byte, updatesKey string) (Result[U], error) {
	var res Result[U]

	cleaned := llm.CleanJSONBlock(string(body))
	if cleaned == "" {
		return res, &DecodeError{Message: "empty extraction response"}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return res, &DecodeError{Message: "extraction response is not a JSON object", Cause: err}
	}

	if updates, ok := raw[updatesKey]; ok && !isNull(updates) {
		var u U
		if err := json.Unmarshal(updates, &u); err != nil {
			return res, &DecodeError{Message: "invalid " + updatesKey, Cause: err}
		}
		res.Updates = &u
	}

	if section, ok := raw["suggestedSection"]; ok && !isNull(section) {
		var s string
		if err := json.Unmarshal(section, &s); err != nil {
			return res, &DecodeError{Message: "invalid suggestedSection", Cause: err}
		}
		res.SuggestedSection = workflow.Section(s)
	}

	if complete, ok := raw["isComplete"]; ok && !isNull(complete) {
		if err := json.Unmarshal(complete, &res.IsComplete); err != nil {
			return res, &DecodeError{Message: "invalid isComplete", Cause: err}
		}
	}

	return res, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
