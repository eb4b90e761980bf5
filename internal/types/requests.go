package types

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Workflow names accepted by the coaching endpoints.
const (
	WorkflowStar   = "star"
	WorkflowTicket = "ticket"
)

// CoachRequest is the body of both the chat and the extraction endpoints:
// the model-facing conversation plus the section and static hints.
type CoachRequest struct {
	Workflow       string `json:"workflow" validate:"required,oneof=star ticket"`
	Messages       []Turn `json:"messages" validate:"required,min=1,dive"`
	CurrentSection string `json:"currentSection"`
	CoachingContext
}

// AnalyzeRequest asks for the competencies of a job description, given as text or URL.
type AnalyzeRequest struct {
	JobDescription string `json:"jobDescription,omitempty" validate:"required_without=JobURL"`
	JobURL         string `json:"jobUrl,omitempty" validate:"omitempty,url"`
}

// ParsePDFRequest carries a base64-encoded PDF to be turned into plain text.
type ParsePDFRequest struct {
	PDFBase64 string `json:"pdfBase64" validate:"required,max=15728640"`
	Filename  string `json:"filename,omitempty"`
}

// ParsePDFResponse is the plain text extracted from an uploaded PDF.
type ParsePDFResponse struct {
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty"`
}

// SnapshotRequest stores a whole-session snapshot.
type SnapshotRequest struct {
	Kind    string          `json:"kind" validate:"required,oneof=interview ticket"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// SessionCreated is returned when a snapshot slot is created. The token
// authorises later reads and writes of that slot.
type SessionCreated struct {
	ID    uuid.UUID `json:"id"`
	Token string    `json:"token"`
}

// SnapshotResponse is a stored snapshot.
type SnapshotResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Validate validates the CoachRequest using the validator.
func (r *CoachRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ParsePDFRequest using the validator.
func (r *ParsePDFRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SnapshotRequest using the validator.
func (r *SnapshotRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
