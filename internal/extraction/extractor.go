package extraction

import (
	"context"
	"fmt"

	"github.com/jonathan/star-coach/internal/llm"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/jonathan/star-coach/internal/workflow"
)

// Extractor is the remote extraction capability: given the model-facing
// conversation, the current section and context hints, it returns the raw
// response body. Implementations must not interpret the body.
type Extractor interface {
	Extract(ctx context.Context, req types.CoachRequest) ([]byte, error)
}

// LLMExtractor calls the model directly. The proxy server uses it, and so
// does the CLI when no proxy is configured.
type LLMExtractor struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMExtractor creates an extractor using the lite model tier.
func NewLLMExtractor(client llm.Client) *LLMExtractor {
	return &LLMExtractor{client: client, tier: llm.TierLite}
}

// Extract implements Extractor.
func (e *LLMExtractor) Extract(ctx context.Context, req types.CoachRequest) ([]byte, error) {
	wf, ok := workflow.Lookup(req.Workflow)
	if !ok {
		return nil, fmt.Errorf("unknown workflow %q", req.Workflow)
	}

	prompt := wf.ExtractionPrompt(workflow.Section(req.CurrentSection), req.CoachingContext, req.Messages)
	out, err := e.client.GenerateJSON(ctx, prompt, e.tier)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	return []byte(out), nil
}
