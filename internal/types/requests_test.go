//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoachRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request CoachRequest
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid star request",
			request: CoachRequest{
				Workflow:       WorkflowStar,
				Messages:       []Turn{{Role: RoleUser, Content: "I led an outage response."}},
				CurrentSection: "situation",
			},
			wantErr: false,
		},
		{
			name: "valid ticket request with context",
			request: CoachRequest{
				Workflow: WorkflowTicket,
				Messages: []Turn{
					{Role: RoleUser, Content: "Checkout is slow"},
					{Role: RoleAssistant, Content: "What outcome do you want?"},
					{Role: RoleUser, Content: "Under one second"},
				},
				CoachingContext: CoachingContext{JobTitle: "Platform Engineer"},
			},
			wantErr: false,
		},
		{
			name:    "missing workflow",
			request: CoachRequest{Messages: []Turn{{Role: RoleUser, Content: "hi"}}},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "unknown workflow",
			request: CoachRequest{Workflow: "essay", Messages: []Turn{{Role: RoleUser, Content: "hi"}}},
			wantErr: true,
			errMsg:  "oneof",
		},
		{
			name:    "no messages",
			request: CoachRequest{Workflow: WorkflowStar},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "bad role",
			request: CoachRequest{Workflow: WorkflowStar, Messages: []Turn{{Role: "system", Content: "x"}}},
			wantErr: true,
			errMsg:  "oneof",
		},
		{
			name:    "empty content",
			request: CoachRequest{Workflow: WorkflowStar, Messages: []Turn{{Role: RoleUser}}},
			wantErr: true,
			errMsg:  "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCoachRequest_JSONShape(t *testing.T) {
	body := `{
		"workflow": "star",
		"messages": [{"role": "user", "content": "hello"}],
		"currentSection": "task",
		"competency": {"id": "leadership", "name": "Leadership"},
		"jobTitle": "Engineering Manager"
	}`

	var req CoachRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, "task", req.CurrentSection)
	require.NotNil(t, req.Competency)
	assert.Equal(t, "Leadership", req.Competency.Name)
	assert.Equal(t, "Engineering Manager", req.JobTitle)
	assert.NoError(t, req.Validate())
}

func TestAnalyzeRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request AnalyzeRequest
		wantErr bool
	}{
		{name: "description only", request: AnalyzeRequest{JobDescription: "We are hiring"}, wantErr: false},
		{name: "url only", request: AnalyzeRequest{JobURL: "https://jobs.lever.co/acme/123"}, wantErr: false},
		{name: "neither", request: AnalyzeRequest{}, wantErr: true},
		{name: "invalid url", request: AnalyzeRequest{JobURL: "not a url"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParsePDFRequest_Validation(t *testing.T) {
	assert.NoError(t, (&ParsePDFRequest{PDFBase64: "JVBERi0xLjQ="}).Validate())
	assert.Error(t, (&ParsePDFRequest{}).Validate())

	tooLarge := ParsePDFRequest{PDFBase64: strings.Repeat("A", 15*1024*1024+1)}
	assert.Error(t, tooLarge.Validate())
}

func TestSnapshotRequest_Validation(t *testing.T) {
	assert.NoError(t, (&SnapshotRequest{Kind: "interview", Payload: json.RawMessage(`{}`)}).Validate())
	assert.Error(t, (&SnapshotRequest{Kind: "resume", Payload: json.RawMessage(`{}`)}).Validate())
	assert.Error(t, (&SnapshotRequest{Kind: "ticket"}).Validate())
}
