package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ai-pack-planner/internal/shared"

	"google.golang.org/genai"
)

// GroundedGeminiClient calls Gemini with the Google Search tool enabled and
// returns the sources the answer was grounded on.
type GroundedGeminiClient struct {
	apiKey    string
	modelName string

	mu     sync.Mutex
	client *genai.Client
}

// NewGroundedGeminiClient creates a search-grounded Gemini client.
func NewGroundedGeminiClient(apiKey, modelName string) *GroundedGeminiClient {
	return &GroundedGeminiClient{apiKey: apiKey, modelName: modelName}
}

func (c *GroundedGeminiClient) sdk(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini grounded: %w (set GEMINI_API_KEY)", ErrMissingAPIKey)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	c.client = client
	return client, nil
}

// GenerateGrounded sends the prompt with search grounding enabled.
func (c *GroundedGeminiClient) GenerateGrounded(ctx context.Context, prompt string) (GroundedResponse, error) {
	client, err := c.sdk(ctx)
	if err != nil {
		return GroundedResponse{}, err
	}

	resp, err := client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return GroundedResponse{}, fmt.Errorf("grounded generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return GroundedResponse{}, ErrNoContent
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return GroundedResponse{}, ErrNoContent
	}

	out := GroundedResponse{
		Content: sb.String(),
		Usage:   shared.TokenUsage{Model: c.modelName},
	}
	if resp.UsageMetadata != nil {
		out.Usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.Usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		out.Usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	if gm := cand.GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			out.Citations = append(out.Citations, Citation{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
		if len(out.Citations) == 0 && gm.SearchEntryPoint != nil {
			out.Citations = ParseSearchChips(gm.SearchEntryPoint.RenderedContent)
		}
	}

	return out, nil
}
