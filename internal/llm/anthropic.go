package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AnthropicProvider generates replies using the Anthropic Messages API.
// Works with both direct Anthropic API and Azure AI Foundry.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	capture   bool
}

// NewAnthropicProvider creates a new Anthropic provider.
// The SDK's automatic retries are disabled: a failed call is reported to the
// user, who decides whether to resubmit.
func NewAnthropicProvider(cfg Config) *AnthropicProvider {
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

	return &AnthropicProvider{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.maxTokens(),
		capture:   cfg.CaptureContent,
	}
}

// Name returns "anthropic".
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Model returns the model name.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Generate sends the system instruction and user message to the Anthropic API.
func (p *AnthropicProvider) Generate(ctx context.Context, system, user string) (*Completion, error) {
	ctx, span := startSpan(ctx, p.Name(), p.model, p.maxTokens)
	defer span.End()

	recordInput(span, p.capture, system, user)

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(user),
			),
		},
	})
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	if len(resp.Content) == 0 {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		span.SetStatus(codes.Error, ErrEmptyResponse.Error())
		return nil, fmt.Errorf("anthropic: %w", ErrEmptyResponse)
	}

	c := &Completion{
		Text:       resp.Content[0].Text,
		StopReason: string(resp.StopReason),
	}
	c.Usage.InputTokens = resp.Usage.InputTokens
	c.Usage.OutputTokens = resp.Usage.OutputTokens

	recordOutput(span, p.capture, string(resp.Model), c)
	return c, nil
}
