package completion

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"actionnerd/internal/logging"
)

// GeminiClient implements Client on top of the Google GenAI SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// DefaultGeminiModel is used when config leaves the model empty.
const DefaultGeminiModel = "gemini-2.5-flash"

// NewGeminiClient creates a Gemini-backed completion client.
func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Complete sends a single-turn prompt and returns the generated text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(opts.MaxTokens),
		Temperature:     genai.Ptr(float32(opts.Temperature)),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty completion")
	}

	logging.Get(logging.CategoryCompletion).Debug("gemini completion ok",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("reply_chars", len(text)))
	return text, nil
}
