// Package llm is the boundary to hosted language models.
//
// A Provider takes a system instruction and a single user message and returns
// the generated text. Providers do not interpret the text; parsing and all
// judgment about what the model said belongs to the evaluator package.
package llm

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/timvw/prompt-grader/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmptyResponse is returned when the provider answered without any text.
var ErrEmptyResponse = errors.New("provider returned empty response")

// Provider sends one system + user message pair to an LLM.
type Provider interface {
	// Generate returns the model's reply text for a single user turn.
	Generate(ctx context.Context, system, user string) (*Completion, error)

	// Name returns the provider name (e.g., "anthropic", "openai", "gemini").
	Name() string

	// Model returns the model name used for generation.
	Model() string
}

// Completion is the raw reply from a provider.
type Completion struct {
	// Text is the reply text exactly as returned, before any fence stripping.
	Text string
	// StopReason is the provider-specific finish reason, if reported.
	StopReason string
	// Usage is the token usage reported by the provider.
	Usage model.TokenUsage
}

// Config holds the settings shared by every provider.
type Config struct {
	// BaseURL overrides the provider's default API endpoint.
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// Model is the model name.
	Model string
	// MaxTokens is the maximum number of output tokens.
	MaxTokens int64
	// ExtraHeaders are additional HTTP headers (e.g., "api-key" for Azure).
	ExtraHeaders map[string]string
	// CaptureContent records system, user and reply text on the generation
	// span. Off by default so prompts never leave the process unintentionally.
	CaptureContent bool
}

// DefaultMaxTokens is the output ceiling used when Config.MaxTokens is unset.
const DefaultMaxTokens = 2000

func (c Config) maxTokens() int64 {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

var tracer = otel.Tracer("prompt-grader/llm")

// startSpan starts a GenAI generation span following the OTel GenAI
// semantic conventions. Span name is "{operation} {model}".
func startSpan(ctx context.Context, provider, modelName string, maxTokens int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "chat "+modelName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", provider),
			attribute.String("gen_ai.request.model", modelName),
			attribute.Int64("gen_ai.request.max_tokens", maxTokens),
			attribute.String("langfuse.observation.type", "generation"),
		),
	)
}

// recordInput attaches the request messages to the span when content capture is on.
func recordInput(span trace.Span, capture bool, system, user string) {
	if !capture {
		return
	}
	inputMessages := []map[string]string{
		{"role": "system", "content": system},
		{"role": "user", "content": user},
	}
	if inputJSON, err := json.Marshal(inputMessages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.input.messages", string(inputJSON)))
	}
}

// recordOutput attaches response metadata, and the reply text when content
// capture is on.
func recordOutput(span trace.Span, capture bool, responseModel string, c *Completion) {
	span.SetAttributes(
		attribute.String("gen_ai.response.model", responseModel),
		attribute.Int64("gen_ai.usage.input_tokens", c.Usage.InputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", c.Usage.OutputTokens),
	)
	if c.StopReason != "" {
		span.SetAttributes(attribute.StringSlice("gen_ai.response.finish_reasons", []string{c.StopReason}))
	}
	if !capture {
		return
	}
	outputMessages := []map[string]string{
		{"role": "assistant", "content": c.Text},
	}
	if outputJSON, err := json.Marshal(outputMessages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.output.messages", string(outputJSON)))
	}
}
