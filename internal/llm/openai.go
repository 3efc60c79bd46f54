package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// OpenAIProvider generates replies using an OpenAI-compatible Chat Completions API.
// Works with OpenAI, Azure OpenAI, and any OpenAI-compatible endpoint.
type OpenAIProvider struct {
	client    openai.Client
	model     string
	maxTokens int64
	capture   bool
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
// For reasoning models, MaxTokens must be large enough to accommodate both
// reasoning tokens and output content.
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	opts := []option.RequestOption{option.WithMaxRetries(0)}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	for k, v := range cfg.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &OpenAIProvider{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.maxTokens(),
		capture:   cfg.CaptureContent,
	}
}

// Name returns "openai".
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Generate sends the system instruction and user message to an
// OpenAI-compatible API.
func (p *OpenAIProvider) Generate(ctx context.Context, system, user string) (*Completion, error) {
	ctx, span := startSpan(ctx, p.Name(), p.model, p.maxTokens)
	defer span.End()

	recordInput(span, p.capture, system, user)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxCompletionTokens: openai.Int(p.maxTokens),
	})
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("openai API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		span.SetStatus(codes.Error, ErrEmptyResponse.Error())
		return nil, fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	c := &Completion{
		Text:       resp.Choices[0].Message.Content,
		StopReason: string(resp.Choices[0].FinishReason),
	}
	c.Usage.InputTokens = resp.Usage.PromptTokens
	c.Usage.OutputTokens = resp.Usage.CompletionTokens

	span.SetAttributes(attribute.String("gen_ai.response.id", resp.ID))
	recordOutput(span, p.capture, resp.Model, c)
	return c, nil
}
