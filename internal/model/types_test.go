package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGradeForScore(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, GradeWeak},
		{25, GradeWeak},
		{26, GradeAverage},
		{50, GradeAverage},
		{51, GradeGood},
		{75, GradeGood},
		{76, GradeExcellent},
		{100, GradeExcellent},
	}

	for _, tt := range tests {
		if got := GradeForScore(tt.score); got != tt.want {
			t.Errorf("GradeForScore(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestEvaluationRequest_TrimmedPrompt(t *testing.T) {
	tests := []struct {
		name        string
		req         EvaluationRequest
		wantPrompt  string
		wantContext bool
	}{
		{"plain", EvaluationRequest{Prompt: "fix this"}, "fix this", false},
		{"padded", EvaluationRequest{Prompt: "  hi \n"}, "hi", false},
		{"blank context", EvaluationRequest{Prompt: "x", Context: " \t"}, "x", false},
		{"with context", EvaluationRequest{Prompt: "x", Context: "for a blog"}, "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.TrimmedPrompt(); got != tt.wantPrompt {
				t.Errorf("TrimmedPrompt() = %q, want %q", got, tt.wantPrompt)
			}
			if got := tt.req.HasContext(); got != tt.wantContext {
				t.Errorf("HasContext() = %v, want %v", got, tt.wantContext)
			}
		})
	}
}

func TestEvaluationResult_BreakdownTotalIndependentOfScore(t *testing.T) {
	// The model is free to report a score that disagrees with the breakdown.
	r := EvaluationResult{
		Score: 90,
		Breakdown: []DimensionScore{
			{Dimension: "Clarity", Score: 4},
			{Dimension: "Specificity", Score: 3},
		},
	}
	if got := r.BreakdownTotal(); got != 7 {
		t.Errorf("BreakdownTotal() = %d, want 7", got)
	}
	if r.Score != 90 {
		t.Errorf("Score changed to %d", r.Score)
	}
}

func TestEvaluationResult_UsageNotSerialized(t *testing.T) {
	r := EvaluationResult{Score: 10, Usage: TokenUsage{InputTokens: 100, OutputTokens: 50}}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if strings.Contains(string(data), "input_tokens") {
		t.Errorf("usage leaked into JSON: %s", data)
	}
	if !strings.Contains(string(data), `"one_line_verdict"`) {
		t.Errorf("JSON output missing one_line_verdict, got: %s", data)
	}
}

func TestErrorResponseShape(t *testing.T) {
	data, err := json.Marshal(ErrorResponse{Error: "Please enter a prompt to analyze."})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"error":"Please enter a prompt to analyze."}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
