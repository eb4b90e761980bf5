package extraction

import (
	"encoding/json"

	"github.com/jonathan/star-coach/internal/llm"
	"github.com/jonathan/star-coach/internal/schemas"
	schemafiles "github.com/jonathan/star-coach/schemas"
)

// Response is the wire shape returned by the extraction endpoint:
// {"<updatesKey>": {...}|null, "suggestedSection": "...", "isComplete": bool}.
type Response struct {
	UpdatesKey       string
	Updates          json.RawMessage
	SuggestedSection string
	IsComplete       bool
}

// MarshalJSON writes the updates under their workflow-specific key.
func (r Response) MarshalJSON() ([]byte, error) {
	updates := r.Updates
	if len(updates) == 0 {
		updates = json.RawMessage("null")
	}
	return json.Marshal(map[string]any{
		r.UpdatesKey:       updates,
		"suggestedSection": r.SuggestedSection,
		"isComplete":       r.IsComplete,
	})
}

// Fallback is the response used when the model output is unusable: no
// updates and the caller's current section.
func Fallback(updatesKey, currentSection string) Response {
	return Response{UpdatesKey: updatesKey, SuggestedSection: currentSection}
}

// NormalizeResponse turns raw model output into a Response. Output that is
// not JSON or does not match the workflow's schema yields the fallback and
// ok=false.
func NormalizeResponse(body []byte, workflowName, updatesKey, currentSection string) (resp Response, ok bool) {
	cleaned := []byte(llm.CleanJSONBlock(string(body)))
	if err := schemas.ValidateEmbedded(schemafiles.Extraction(workflowName), cleaned); err != nil {
		return Fallback(updatesKey, currentSection), false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(cleaned, &raw); err != nil {
		return Fallback(updatesKey, currentSection), false
	}

	resp = Response{UpdatesKey: updatesKey, Updates: raw[updatesKey], SuggestedSection: currentSection}
	if section, present := raw["suggestedSection"]; present && !isNull(section) {
		_ = json.Unmarshal(section, &resp.SuggestedSection)
	}
	if complete, present := raw["isComplete"]; present && !isNull(complete) {
		_ = json.Unmarshal(complete, &resp.IsComplete)
	}
	return resp, true
}
