package evaluator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/timvw/prompt-grader/internal/llm"
	"github.com/timvw/prompt-grader/internal/model"
)

// stubProvider returns a canned reply and records what it was sent.
type stubProvider struct {
	reply string
	err   error

	calls  int
	system string
	user   string
}

func (s *stubProvider) Generate(_ context.Context, system, user string) (*llm.Completion, error) {
	s.calls++
	s.system = system
	s.user = user
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Completion{
		Text:  s.reply,
		Usage: model.TokenUsage{InputTokens: 120, OutputTokens: 340},
	}, nil
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func newTestEvaluator(p *stubProvider) (*Evaluator, *bytes.Buffer) {
	var logs bytes.Buffer
	return &Evaluator{
		Provider: p,
		Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
	}, &logs
}

func TestValidate(t *testing.T) {
	tests := []struct {
		prompt  string
		wantErr bool
	}{
		{"", true},
		{"hi", true},
		{"    hi    ", true},
		{"abcd", true},
		{"\n\t abcd \n", true},
		{"abcde", false},
		{"fix this", false},
		{"héllo", false},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			err := Validate(model.EvaluationRequest{Prompt: tt.prompt})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) = %v, wantErr %v", tt.prompt, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrPromptTooShort) {
				t.Errorf("Validate(%q) error %v does not wrap ErrPromptTooShort", tt.prompt, err)
			}
		})
	}
}

func TestEvaluate_ShortPromptNeverCallsModel(t *testing.T) {
	for _, prompt := range []string{"", "hi", "  ok  ", "1234"} {
		t.Run(prompt, func(t *testing.T) {
			p := &stubProvider{reply: fullReply}
			e, _ := newTestEvaluator(p)

			reply, err := e.Evaluate(context.Background(), model.EvaluationRequest{Prompt: prompt})
			if reply != nil {
				t.Errorf("expected no reply, got %+v", reply)
			}
			var evalErr *Error
			if !errors.As(err, &evalErr) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if evalErr.Kind != KindValidation {
				t.Errorf("Kind = %v, want %v", evalErr.Kind, KindValidation)
			}
			if evalErr.Status() != http.StatusBadRequest {
				t.Errorf("Status() = %d, want 400", evalErr.Status())
			}
			if evalErr.Message() != "Please enter a prompt to analyze." {
				t.Errorf("Message() = %q", evalErr.Message())
			}
			if p.calls != 0 {
				t.Errorf("model called %d times, want 0", p.calls)
			}
		})
	}
}

func TestEvaluate_Success(t *testing.T) {
	p := &stubProvider{reply: fullReply}
	e, logs := newTestEvaluator(p)

	reply, err := e.Evaluate(context.Background(), model.EvaluationRequest{Prompt: "fix this", Context: "a Go repo"})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("model called %d times, want 1", p.calls)
	}
	if p.system != SystemPrompt {
		t.Error("system instruction not passed to the model")
	}
	if !strings.Contains(p.user, "\"\"\"\nfix this\n\"\"\"") || !strings.Contains(p.user, "a Go repo") {
		t.Errorf("user message missing prompt or context:\n%s", p.user)
	}
	if reply.Result.Score != 20 || reply.Result.Grade != "Weak" {
		t.Errorf("unexpected result %+v", reply.Result)
	}
	if reply.Result.Usage.OutputTokens != 340 {
		t.Errorf("Usage not propagated: %+v", reply.Result.Usage)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected log output on success: %s", logs.String())
	}
}

func TestEvaluate_FencedReply(t *testing.T) {
	p := &stubProvider{reply: "```json\n{\"score\":50,\"grade\":\"Average\"}\n```"}
	e, _ := newTestEvaluator(p)

	reply, err := e.Evaluate(context.Background(), model.EvaluationRequest{Prompt: "summarize this article"})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if string(reply.Raw) != `{"score":50,"grade":"Average"}` {
		t.Errorf("Raw = %s", reply.Raw)
	}
}

func TestEvaluate_ProviderFailure(t *testing.T) {
	p := &stubProvider{err: errors.New("dial tcp: i/o timeout")}
	e, logs := newTestEvaluator(p)

	reply, err := e.Evaluate(context.Background(), model.EvaluationRequest{Prompt: "my secret prompt text"})
	if reply != nil {
		t.Errorf("expected no reply, got %+v", reply)
	}
	var evalErr *Error
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if evalErr.Kind != KindService {
		t.Errorf("Kind = %v, want %v", evalErr.Kind, KindService)
	}
	if evalErr.Status() != http.StatusInternalServerError {
		t.Errorf("Status() = %d, want 500", evalErr.Status())
	}
	if evalErr.Message() != "Something went wrong. Please try again." {
		t.Errorf("Message() = %q", evalErr.Message())
	}
	if p.calls != 1 {
		t.Errorf("model called %d times, want exactly 1 (no retry)", p.calls)
	}

	out := logs.String()
	if !strings.Contains(out, "i/o timeout") || !strings.Contains(out, "service_error") {
		t.Errorf("raw error not logged: %s", out)
	}
	if strings.Contains(out, "my secret prompt text") {
		t.Errorf("prompt content leaked into logs: %s", out)
	}
}

func TestEvaluate_MalformedReply(t *testing.T) {
	p := &stubProvider{reply: "not json at all"}
	e, logs := newTestEvaluator(p)

	reply, err := e.Evaluate(context.Background(), model.EvaluationRequest{Prompt: "write a haiku"})
	if reply != nil {
		t.Errorf("expected no partial data, got %+v", reply)
	}
	var evalErr *Error
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if evalErr.Kind != KindParse {
		t.Errorf("Kind = %v, want %v", evalErr.Kind, KindParse)
	}
	if !errors.Is(err, ErrMalformedReply) {
		t.Errorf("error %v does not wrap ErrMalformedReply", err)
	}
	if evalErr.Message() != "Failed to parse AI response. Please try again." {
		t.Errorf("Message() = %q", evalErr.Message())
	}
	if p.calls != 1 {
		t.Errorf("model called %d times, want exactly 1 (no retry)", p.calls)
	}
	if !strings.Contains(logs.String(), "parse_error") {
		t.Errorf("parse failure not logged: %s", logs.String())
	}
}

func TestAsError(t *testing.T) {
	plain := errors.New("boom")
	if got := AsError(plain); got.Kind != KindService || !errors.Is(got, plain) {
		t.Errorf("AsError(plain) = %+v", got)
	}

	parse := &Error{Kind: KindParse, Err: ErrMalformedReply}
	if got := AsError(parse); got != parse {
		t.Errorf("AsError should return existing *Error unchanged")
	}
}
