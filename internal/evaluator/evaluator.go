// Package evaluator scores and rewrites user prompts with an LLM.
//
// Go code validates the request, builds the instruction and parses the reply;
// every judgment about the prompt (score, grade, rewrite) comes from the
// model. The reply is trusted once it parses as JSON.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/timvw/prompt-grader/internal/llm"
	"github.com/timvw/prompt-grader/internal/model"
	telem "github.com/timvw/prompt-grader/internal/otel"
)

// Evaluator runs one evaluation per call. It holds no per-request state and
// is safe for concurrent use.
type Evaluator struct {
	Provider llm.Provider
	Metrics  *telem.Metrics // nil disables metrics
	Logger   *slog.Logger   // nil uses slog.Default()
}

// Validate checks the request precondition: a prompt of at least
// model.MinPromptLength characters after trimming.
func Validate(req model.EvaluationRequest) error {
	if len([]rune(req.TrimmedPrompt())) < model.MinPromptLength {
		return &Error{Kind: KindValidation, Err: ErrPromptTooShort}
	}
	return nil
}

// Evaluate validates the request, calls the model once and parses the reply.
// Failures are returned as *Error. There is no retry.
func (e *Evaluator) Evaluate(ctx context.Context, req model.EvaluationRequest) (*Reply, error) {
	start := time.Now()

	reply, err := e.evaluate(ctx, req)
	if err != nil {
		evalErr := AsError(err)
		e.Metrics.RecordEvaluation(ctx, evalErr.Kind.String())
		if evalErr.Kind != KindValidation {
			e.logger().Error("evaluation failed",
				"kind", evalErr.Kind.String(),
				"provider", e.Provider.Name(),
				"model", e.Provider.Model(),
				"duration_ms", time.Since(start).Milliseconds(),
				"err", evalErr.Err,
			)
		}
		return nil, evalErr
	}

	e.Metrics.RecordEvaluation(ctx, "ok")
	e.Metrics.RecordDuration(ctx, e.Provider.Name(), e.Provider.Model(), time.Since(start))
	return reply, nil
}

func (e *Evaluator) evaluate(ctx context.Context, req model.EvaluationRequest) (*Reply, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	user, err := BuildUserMessage(req)
	if err != nil {
		return nil, &Error{Kind: KindService, Err: err}
	}

	completion, err := e.Provider.Generate(ctx, SystemPrompt, user)
	if err != nil {
		return nil, &Error{Kind: KindService, Err: err}
	}
	e.Metrics.RecordTokens(ctx, e.Provider.Name(), e.Provider.Model(),
		completion.Usage.InputTokens, completion.Usage.OutputTokens)

	reply, err := ParseReply(completion.Text)
	if err != nil {
		return nil, &Error{Kind: KindParse, Err: fmt.Errorf("stop reason %q: %w", completion.StopReason, err)}
	}
	reply.Result.Usage = completion.Usage
	return reply, nil
}

func (e *Evaluator) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
