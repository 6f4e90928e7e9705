package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for one model call in a pipeline
// stage, e.g. "distribution", "food" or "food-grounding".
type AgentMeta struct {
	AgentName string
	RunID     string
	Usage     TokenUsage
	Latency   time.Duration
	Failed    bool
}
