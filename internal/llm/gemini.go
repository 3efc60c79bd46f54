package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

// GeminiProvider generates replies using the Google Gemini API.
type GeminiProvider struct {
	client    *genai.Client
	model     string
	maxTokens int64
	capture   bool
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if len(cfg.ExtraHeaders) > 0 {
		cc.HTTPOptions.Headers = http.Header{}
		for k, v := range cfg.ExtraHeaders {
			cc.HTTPOptions.Headers.Set(k, v)
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.maxTokens(),
		capture:   cfg.CaptureContent,
	}, nil
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Model returns the model name.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Generate sends the system instruction and user message to the Gemini API.
func (p *GeminiProvider) Generate(ctx context.Context, system, user string) (*Completion, error) {
	ctx, span := startSpan(ctx, p.Name(), p.model, p.maxTokens)
	defer span.End()

	recordInput(span, p.capture, system, user)

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   int32(p.maxTokens),
	})
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	text := candidateText(resp)
	if text == "" {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		span.SetStatus(codes.Error, ErrEmptyResponse.Error())
		return nil, fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	c := &Completion{Text: text}
	if len(resp.Candidates) > 0 {
		c.StopReason = string(resp.Candidates[0].FinishReason)
	}
	if resp.UsageMetadata != nil {
		c.Usage.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		c.Usage.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}

	recordOutput(span, p.capture, p.model, c)
	return c, nil
}

// candidateText concatenates the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
