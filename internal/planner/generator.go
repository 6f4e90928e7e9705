package planner

import (
	"context"
	"fmt"
	"time"

	"ai-pack-planner/internal/llm"
	"ai-pack-planner/internal/logger"
	"ai-pack-planner/internal/shared"
)

// UsageRecorder receives the metadata of every model call.
type UsageRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// GenerationError means the backend could not be reached or rejected the
// request. No response was received.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator sends schema-wrapped prompts to a plain text backend. It does
// not retry.
type Generator struct {
	backend  llm.TextGenerator
	recorder UsageRecorder
	log      *logger.Logger
}

// NewGenerator creates a Generator. recorder may be nil.
func NewGenerator(backend llm.TextGenerator, recorder UsageRecorder, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Generator{backend: backend, recorder: recorder, log: log}
}

// Generate returns the raw (un-normalized) response text for stage.
func (g *Generator) Generate(ctx context.Context, stage, prompt string, schema Schema) (string, error) {
	start := time.Now()
	resp, err := g.backend.GenerateContent(ctx, schema.Apply(prompt))
	record(ctx, g.recorder, g.log, shared.AgentMeta{
		AgentName: stage,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
		Failed:    err != nil,
	})
	if err != nil {
		return "", &GenerationError{Stage: stage, Err: err}
	}
	return resp.Content, nil
}

// GroundedGenerator is the search-grounded counterpart of Generator.
type GroundedGenerator struct {
	backend  llm.GroundedTextGenerator
	recorder UsageRecorder
	log      *logger.Logger
}

// NewGroundedGenerator creates a GroundedGenerator. recorder may be nil.
func NewGroundedGenerator(backend llm.GroundedTextGenerator, recorder UsageRecorder, log *logger.Logger) *GroundedGenerator {
	if log == nil {
		log = logger.NewNop()
	}
	return &GroundedGenerator{backend: backend, recorder: recorder, log: log}
}

// Generate returns the raw response text and its citation candidates.
func (g *GroundedGenerator) Generate(ctx context.Context, stage, prompt string, schema Schema) (llm.GroundedResponse, error) {
	start := time.Now()
	resp, err := g.backend.GenerateGrounded(ctx, schema.Apply(prompt))
	record(ctx, g.recorder, g.log, shared.AgentMeta{
		AgentName: stage,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
		Failed:    err != nil,
	})
	if err != nil {
		return llm.GroundedResponse{}, &GenerationError{Stage: stage, Err: err}
	}
	return resp, nil
}

type runIDKey struct{}

// WithRunID tags ctx so usage records can be tied to a wizard run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFrom returns the run id stored by WithRunID, if any.
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func record(ctx context.Context, rec UsageRecorder, log *logger.Logger, meta shared.AgentMeta) {
	meta.RunID = RunIDFrom(ctx)
	log.Debug("model call finished",
		"stage", meta.AgentName,
		"run_id", meta.RunID,
		"model", meta.Usage.Model,
		"prompt_tokens", meta.Usage.PromptTokens,
		"completion_tokens", meta.Usage.CompletionTokens,
		"latency", meta.Latency,
		"failed", meta.Failed,
	)
	if rec == nil {
		return
	}
	if err := rec.RecordMeta(meta); err != nil {
		log.Warn("failed to record usage", "stage", meta.AgentName, "error", err)
	}
}
