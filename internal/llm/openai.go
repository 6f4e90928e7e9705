package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-pack-planner/internal/shared"
)

const (
	GroqBaseURL = "https://api.groq.com/openai/v1"
)

// OpenAIOptions configures a chat-completions backend.
type OpenAIOptions struct {
	Name        string // used in error messages, e.g. "groq"
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	// JSONMode requests response_format=json_object. Leave it off for
	// prompts that expect prose.
	JSONMode   bool
	HTTPClient *http.Client
}

// openAIClient talks to any OpenAI-compatible chat-completions endpoint
// (Groq, OpenAI).
type openAIClient struct {
	opts OpenAIOptions
}

// NewOpenAICompatibleClient creates a chat-completions client.
func NewOpenAICompatibleClient(opts OpenAIOptions) TextGenerator {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Name == "" {
		opts.Name = "openai"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &openAIClient{opts: opts}
}

// NewGroqClient creates a Groq client on the OpenAI-compatible endpoint.
func NewGroqClient(apiKey, model string, jsonMode bool) TextGenerator {
	return NewOpenAICompatibleClient(OpenAIOptions{
		Name:        "groq",
		APIKey:      apiKey,
		BaseURL:     GroqBaseURL,
		Model:       model,
		Temperature: 0.1,
		JSONMode:    jsonMode,
	})
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateContent sends a prompt to the chat model and returns the generated text.
func (c *openAIClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	if c.opts.APIKey == "" {
		return ContentResponse{}, fmt.Errorf("%s: %w", c.opts.Name, ErrMissingAPIKey)
	}

	reqBody := chatRequest{
		Model:       c.opts.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.opts.Temperature,
	}
	if c.opts.JSONMode {
		reqBody.ResponseFormat = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("%s api error: status=%d body=%s", c.opts.Name, resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return ContentResponse{}, ErrNoContent
	}

	model := chatResp.Model
	if model == "" {
		model = c.opts.Model
	}

	return ContentResponse{
		Content: chatResp.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
			Model:            model,
		},
	}, nil
}
