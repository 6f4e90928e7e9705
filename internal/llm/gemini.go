package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ai-pack-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient is a plain (ungrounded) client for the Google Gemini API.
// The SDK client is created on first use so a missing key only fails the
// calls that need it.
type GeminiClient struct {
	apiKey    string
	modelName string

	mu     sync.Mutex
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(apiKey, modelName string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey, modelName: modelName}
}

func (c *GeminiClient) generativeModel(ctx context.Context) (*genai.GenerativeModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != nil {
		return c.model, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", ErrMissingAPIKey)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	c.model = client.GenerativeModel(c.modelName)
	return c.model, nil
}

// GenerateContent sends a prompt to the Gemini model and returns the generated text.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	model, err := c.generativeModel(ctx)
	if err != nil {
		return ContentResponse{}, err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ContentResponse{}, ErrNoContent
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return ContentResponse{}, ErrNoContent
	}

	usage := shared.TokenUsage{Model: c.modelName}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return ContentResponse{Content: sb.String(), Usage: usage}, nil
}

// Close closes the underlying Gemini client if one was created.
func (c *GeminiClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
