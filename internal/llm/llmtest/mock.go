// Package llmtest provides an llm.Client test double.
package llmtest

import (
	"context"

	"github.com/jonathan/star-coach/internal/llm"
)

// MockClient implements llm.Client for testing. Unset funcs return zero values.
type MockClient struct {
	GenerateContentFunc     func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc        func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	StreamChatFunc          func(ctx context.Context, req llm.ChatRequest, onDelta func(string) error) error
	ExtractDocumentTextFunc func(ctx context.Context, mimeType string, data []byte, instruction string, tier llm.ModelTier) (string, error)
	GetModelFunc            func(tier llm.ModelTier) string
	CloseFunc               func() error
}

var _ llm.Client = (*MockClient)(nil)

// GenerateContent implements llm.Client.
func (m *MockClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

// GenerateJSON implements llm.Client.
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

// StreamChat implements llm.Client.
func (m *MockClient) StreamChat(ctx context.Context, req llm.ChatRequest, onDelta func(string) error) error {
	if m.StreamChatFunc != nil {
		return m.StreamChatFunc(ctx, req, onDelta)
	}
	return nil
}

// ExtractDocumentText implements llm.Client.
func (m *MockClient) ExtractDocumentText(ctx context.Context, mimeType string, data []byte, instruction string, tier llm.ModelTier) (string, error) {
	if m.ExtractDocumentTextFunc != nil {
		return m.ExtractDocumentTextFunc(ctx, mimeType, data, instruction, tier)
	}
	return "", nil
}

// GetModel implements llm.Client.
func (m *MockClient) GetModel(tier llm.ModelTier) string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc(tier)
	}
	return "mock-model"
}

// Close implements llm.Client.
func (m *MockClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Deltas returns a StreamChatFunc that emits each chunk in order.
func Deltas(chunks ...string) func(ctx context.Context, req llm.ChatRequest, onDelta func(string) error) error {
	return func(ctx context.Context, _ llm.ChatRequest, onDelta func(string) error) error {
		for _, c := range chunks {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := onDelta(c); err != nil {
				return err
			}
		}
		return nil
	}
}
