package evaluator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/timvw/prompt-grader/internal/model"
)

// ErrMalformedReply is returned when the model's reply is not valid JSON
// after fence stripping.
var ErrMalformedReply = errors.New("model reply is not valid JSON")

const fence = "```"

// stripMarkdownFences removes a surrounding ``` or ```json fence that models
// add despite being told not to. Text that does not open with a fence is
// only trimmed.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, fence) {
		return s
	}
	s = strings.TrimPrefix(s, fence)
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// Reply is a model reply that parsed as JSON.
type Reply struct {
	// Raw is the reply JSON, compacted but otherwise as the model sent it.
	// This is what the HTTP endpoint returns.
	Raw json.RawMessage
	// Result is a best-effort typed view of Raw. Fields the model omitted or
	// sent with the wrong type are left at their zero value.
	Result model.EvaluationResult
}

// ParseReply strips optional code fences from the raw model text and parses
// the remainder as strict JSON. Any valid JSON value is accepted; the shape is
// not checked. Parse failures wrap ErrMalformedReply.
func ParseReply(raw string) (*Reply, error) {
	text := stripMarkdownFences(raw)

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	data := buf.Bytes()
	return &Reply{
		Raw:    json.RawMessage(data),
		Result: decodeResult(data),
	}, nil
}

// decodeResult reads the known fields with gjson so that a wrong type in one
// field does not discard the others.
func decodeResult(data []byte) model.EvaluationResult {
	doc := gjson.ParseBytes(data)

	r := model.EvaluationResult{
		Score:           int(doc.Get("score").Int()),
		Grade:           doc.Get("grade").String(),
		OneLineVerdict:  doc.Get("one_line_verdict").String(),
		RewrittenPrompt: doc.Get("rewritten_prompt").String(),
		WhatsWeak:       stringList(doc.Get("whats_weak")),
		WhatChanged:     stringList(doc.Get("what_changed")),
	}

	doc.Get("breakdown").ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		r.Breakdown = append(r.Breakdown, model.DimensionScore{
			Dimension: v.Get("dimension").String(),
			Score:     int(v.Get("score").Int()),
			Feedback:  v.Get("feedback").String(),
		})
		return true
	})

	return r
}

func stringList(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
