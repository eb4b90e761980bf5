package parsing

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/star-coach/internal/llm"
	"github.com/jonathan/star-coach/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPDFText(t *testing.T) {
	client := &llmtest.MockClient{
		ExtractDocumentTextFunc: func(_ context.Context, mime string, data []byte, instruction string, tier llm.ModelTier) (string, error) {
			assert.Equal(t, PDFMimeType, mime)
			assert.Equal(t, []byte("%PDF"), data)
			assert.Contains(t, instruction, "Extract all text content")
			assert.Equal(t, llm.TierStandard, tier)
			return "\n Staff Engineer \n", nil
		},
	}

	got, err := ExtractPDFText(context.Background(), client, []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", got)
}

func TestExtractPDFText_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		text    string
		err     error
		wantErr any
	}{
		{name: "no data", wantErr: &ValidationError{}},
		{name: "model error", data: []byte("%PDF"), err: errors.New("quota"), wantErr: &APICallError{}},
		{name: "blank text", data: []byte("%PDF"), text: " \n ", wantErr: &ValidationError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &llmtest.MockClient{
				ExtractDocumentTextFunc: func(context.Context, string, []byte, string, llm.ModelTier) (string, error) {
					return tt.text, tt.err
				},
			}

			_, err := ExtractPDFText(context.Background(), client, tt.data)
			require.Error(t, err)
			assert.IsType(t, tt.wantErr, err)
		})
	}
}
