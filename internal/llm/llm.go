package llm

import (
	"context"
	"errors"

	"ai-pack-planner/internal/shared"
)

var (
	// ErrMissingAPIKey is returned by a backend invoked without credentials.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrNoContent is returned when a backend answers with no usable text.
	ErrNoContent = errors.New("no content generated")
	// ErrNoJSON is returned when no JSON value can be located in a response.
	ErrNoJSON = errors.New("no JSON value found in response")
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Citation is a source the grounded backend consulted.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GroundedResponse is a search-grounded answer. Citations may be empty.
type GroundedResponse struct {
	Content   string
	Citations []Citation
	Usage     shared.TokenUsage
}

// GroundedTextGenerator generates text backed by web search results.
type GroundedTextGenerator interface {
	GenerateGrounded(ctx context.Context, prompt string) (GroundedResponse, error)
}
