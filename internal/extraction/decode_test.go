package extraction

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/star-coach/internal/types"
	"github.com/jonathan/star-coach/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		check   func(t *testing.T, res Result[types.StarUpdates])
	}{
		{
			name: "plain object",
			body: `{"starUpdates":{"situation":"S","task":null},"suggestedSection":"action","isComplete":false}`,
			check: func(t *testing.T, res Result[types.StarUpdates]) {
				require.NotNil(t, res.Updates)
				require.NotNil(t, res.Updates.Situation)
				assert.Equal(t, "S", *res.Updates.Situation)
				assert.Nil(t, res.Updates.Task)
				assert.Equal(t, workflow.Action, res.SuggestedSection)
			},
		},
		{
			name: "fenced with prose",
			body: "Here you go:\n```json\n{\"starUpdates\":null,\"suggestedSection\":\"task\",\"isComplete\":false}\n```",
			check: func(t *testing.T, res Result[types.StarUpdates]) {
				assert.Nil(t, res.Updates)
				assert.Equal(t, workflow.Task, res.SuggestedSection)
			},
		},
		{
			name: "preamble only",
			body: `Sure! {"starUpdates":{"result":"Saved $1M"},"isComplete":true}`,
			check: func(t *testing.T, res Result[types.StarUpdates]) {
				require.NotNil(t, res.Updates)
				assert.Equal(t, "Saved $1M", *res.Updates.Result)
				assert.True(t, res.IsComplete)
				assert.Empty(t, res.SuggestedSection)
			},
		},
		{name: "not json", body: "I could not find anything.", wantErr: true},
		{name: "empty", body: "  ", wantErr: true},
		{name: "array", body: `[1,2]`, wantErr: true},
		{name: "wrong field type", body: `{"starUpdates":{"situation":42}}`, wantErr: true},
		{name: "wrong section type", body: `{"suggestedSection":3}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decode[types.StarUpdates]([]byte(tt.body), "starUpdates")
			if tt.wantErr {
				var decodeErr *DecodeError
				assert.ErrorAs(t, err, &decodeErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, res)
		})
	}
}

func TestNormalizeResponse(t *testing.T) {
	resp, ok := NormalizeResponse([]byte("```json\n{\"ticketUpdates\":{\"intent\":\"Fix login\"},\"suggestedSection\":\"outcome\",\"isComplete\":false}\n```"),
		"ticket", "ticketUpdates", "intent")
	require.True(t, ok)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ticketUpdates":{"intent":"Fix login"},"suggestedSection":"outcome","isComplete":false}`, string(data))
}

func TestNormalizeResponse_Fallback(t *testing.T) {
	for _, body := range []string{"not json at all", `{"starUpdates":{"task":["wrong"]}}`} {
		resp, ok := NormalizeResponse([]byte(body), "star", "starUpdates", "task")
		assert.False(t, ok)

		data, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{"starUpdates":null,"suggestedSection":"task","isComplete":false}`, string(data))
	}
}

func TestNormalizeResponse_MissingSectionKeepsCurrent(t *testing.T) {
	resp, ok := NormalizeResponse([]byte(`{"starUpdates":{"situation":"s"}}`), "star", "starUpdates", "situation")
	require.True(t, ok)
	assert.Equal(t, "situation", resp.SuggestedSection)
}
