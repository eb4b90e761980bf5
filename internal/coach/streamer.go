package coach

import (
	"context"
	"fmt"

	"github.com/jonathan/star-coach/internal/llm"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/jonathan/star-coach/internal/workflow"
)

// ChatStreamer is the remote chat capability. onDelta is called for every
// text delta in order; returning an error from it stops the stream.
type ChatStreamer interface {
	StreamChat(ctx context.Context, req types.CoachRequest, onDelta func(string) error) error
}

// LLMStreamer answers chat requests with the model directly. The proxy
// server serves /api/coach with it.
type LLMStreamer struct {
	client      llm.Client
	tier        llm.ModelTier
	temperature float32
	maxTokens   int32
}

// NewLLMStreamer creates a streamer on the standard tier.
func NewLLMStreamer(client llm.Client) *LLMStreamer {
	return &LLMStreamer{client: client, tier: llm.TierStandard, temperature: 0.7, maxTokens: 1024}
}

// StreamChat implements ChatStreamer.
func (l *LLMStreamer) StreamChat(ctx context.Context, req types.CoachRequest, onDelta func(string) error) error {
	wf, ok := workflow.Lookup(req.Workflow)
	if !ok {
		return fmt.Errorf("unknown workflow %q", req.Workflow)
	}

	return l.client.StreamChat(ctx, llm.ChatRequest{
		System:      wf.ChatSystemPrompt(workflow.Section(req.CurrentSection), req.CoachingContext),
		Turns:       req.Messages,
		Tier:        l.tier,
		Temperature: l.temperature,
		MaxTokens:   l.maxTokens,
	}, onDelta)
}
