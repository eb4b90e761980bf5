package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/star-coach/internal/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON content using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// StreamChat sends a multi-turn conversation and delivers the reply as text deltas
	StreamChat(ctx context.Context, req ChatRequest, onDelta func(string) error) error
	// ExtractDocumentText asks the model to transcribe a binary document (e.g. a PDF)
	ExtractDocumentText(ctx context.Context, mimeType string, data []byte, instruction string, tier ModelTier) (string, error)
	// GetModel returns the underlying provider model for a tier (for direct access if needed)
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported model provider %q", config.Provider)
	}
}

// ChatRequest is a system prompt plus a strictly alternating conversation
// that ends with a user turn.
type ChatRequest struct {
	System      string
	Turns       []types.Turn
	Tier        ModelTier
	Temperature float32
	MaxTokens   int32
}

// ErrInvalidConversation is returned when the turns cannot be sent as a chat.
var ErrInvalidConversation = errors.New("conversation must end with a user turn")

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	// Clean any markdown code block wrappers
	return CleanJSONBlock(text), nil
}

// StreamChat streams a chat completion. onDelta is called once per non-empty
// text chunk in arrival order; an error from onDelta stops the stream.
func (c *GeminiClient) StreamChat(ctx context.Context, req ChatRequest, onDelta func(string) error) error {
	modelName := c.config.GetModel(req.Tier)
	if modelName == "" {
		return fmt.Errorf("no model configured for tier %s", req.Tier)
	}
	if len(req.Turns) == 0 || req.Turns[len(req.Turns)-1].Role != types.RoleUser {
		return ErrInvalidConversation
	}

	model := c.client.GenerativeModel(modelName)
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}

	cs := model.StartChat()
	last := req.Turns[len(req.Turns)-1]
	for _, turn := range req.Turns[:len(req.Turns)-1] {
		cs.History = append(cs.History, &genai.Content{
			Role:  geminiRole(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	iter := cs.SendMessageStream(ctx, genai.Text(last.Content))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to stream content: %w", err)
		}
		if text := textOf(resp); text != "" {
			if err := onDelta(text); err != nil {
				return err
			}
		}
	}
}

// ExtractDocumentText sends an inline document with an instruction and returns the text reply.
func (c *GeminiClient) ExtractDocumentText(ctx context.Context, mimeType string, data []byte, instruction string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1)

	resp, err := model.GenerateContent(ctx, genai.Blob{MIMEType: mimeType, Data: data}, genai.Text(instruction))
	if err != nil {
		return "", fmt.Errorf("failed to extract document text: %w", err)
	}

	return extractTextFromResponse(resp)
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// textOf concatenates the text parts of a streamed chunk. Chunks without
// candidates (e.g. usage-only chunks) yield "".
func textOf(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func geminiRole(role types.Role) string {
	if role == types.RoleAssistant {
		return "model"
	}
	return "user"
}
