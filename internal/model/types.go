package model

import "strings"

// MinPromptLength is the minimum trimmed prompt length accepted for evaluation.
const MinPromptLength = 5

// Grade labels, in ascending order of quality.
const (
	GradeWeak      = "Weak"
	GradeAverage   = "Average"
	GradeGood      = "Good"
	GradeExcellent = "Excellent"
)

// Dimensions are the fixed evaluation axes, in the order the model is asked
// to report them.
var Dimensions = []string{
	"Clarity",
	"Specificity",
	"Context",
	"Output Guidance",
	"Constraints",
}

// MaxDimensionScore is the upper bound of a single breakdown score.
const MaxDimensionScore = 20

// EvaluationRequest is the JSON body posted by the browser.
type EvaluationRequest struct {
	// Prompt is the user-authored text to evaluate.
	Prompt string `json:"prompt"`
	// Context is optional supplementary text clarifying the prompt's intended use.
	Context string `json:"context,omitempty"`
}

// TrimmedPrompt returns the prompt without surrounding whitespace.
func (r EvaluationRequest) TrimmedPrompt() string {
	return strings.TrimSpace(r.Prompt)
}

// HasContext reports whether the request carries non-blank extra context.
func (r EvaluationRequest) HasContext() bool {
	return strings.TrimSpace(r.Context) != ""
}

// EvaluationResult is the JSON structure returned by the LLM.
// Nothing here is enforced: the model may omit fields or return a score that
// does not match the breakdown, and consumers must render what is present.
type EvaluationResult struct {
	// Score is the overall score, 0-100.
	Score int `json:"score"`
	// Grade is one of Weak, Average, Good, Excellent.
	Grade string `json:"grade"`
	// OneLineVerdict summarizes the prompt's biggest issue or strength.
	OneLineVerdict string `json:"one_line_verdict"`
	// Breakdown holds one entry per dimension, normally in Dimensions order.
	Breakdown []DimensionScore `json:"breakdown"`
	// WhatsWeak lists plain-English issues with the original prompt.
	WhatsWeak []string `json:"whats_weak"`
	// RewrittenPrompt is the improved prompt. May contain line breaks.
	RewrittenPrompt string `json:"rewritten_prompt"`
	// WhatChanged lists the changes made and why.
	WhatChanged []string `json:"what_changed"`

	// Usage is populated from the provider response, not parsed from the reply.
	Usage TokenUsage `json:"-"`
}

// DimensionScore is a single row of the breakdown.
type DimensionScore struct {
	Dimension string `json:"dimension"`
	// Score is 0-20.
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// BreakdownTotal sums the dimension scores. It is informational only and is
// not expected to equal Score.
func (r *EvaluationResult) BreakdownTotal() int {
	total := 0
	for _, d := range r.Breakdown {
		total += d.Score
	}
	return total
}

// GradeForScore returns the rubric label for an overall score.
// Used for display when the model omitted the grade.
func GradeForScore(score int) string {
	switch {
	case score <= 25:
		return GradeWeak
	case score <= 50:
		return GradeAverage
	case score <= 75:
		return GradeGood
	default:
		return GradeExcellent
	}
}

// ErrorResponse is the JSON body of every non-200 response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TokenUsage tracks LLM token consumption for a single evaluation.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}
