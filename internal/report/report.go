// Package report renders an evaluation result as styled terminal text.
//
// Rendering is defensive: any field may be missing or out of range, and the
// overall score is never reconciled with the breakdown.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/timvw/prompt-grader/internal/model"
)

const (
	barWidth     = 20
	scoreWidth   = 40
	defaultWidth = 80
)

// Render returns the full report for a result. width <= 0 uses 80 columns.
func Render(r model.EvaluationResult, s Styles, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	body := lipgloss.NewStyle().Width(width - 2)

	var b strings.Builder

	// Score and grade. The color follows the score band, the label is what
	// the model said.
	band := model.GradeForScore(r.Score)
	color := lipgloss.NewStyle().Bold(true).Foreground(s.Theme().GradeColor(band))
	grade := r.Grade
	if grade == "" {
		grade = band
	}
	b.WriteString(color.Render(fmt.Sprintf("%d", r.Score)))
	b.WriteString(s.Dim.Render("/100  "))
	b.WriteString(color.Render(strings.ToUpper(grade)))
	b.WriteString("\n")
	b.WriteString(Bar(r.Score, 100, scoreWidth, s))
	b.WriteString("\n")

	if r.OneLineVerdict != "" {
		section(&b, s, "Verdict", width)
		b.WriteString(body.Render(s.Text.Render(r.OneLineVerdict)))
		b.WriteString("\n")
	}

	if len(r.Breakdown) > 0 {
		section(&b, s, "Score Breakdown", width)
		nameWidth := 0
		for _, d := range r.Breakdown {
			nameWidth = max(nameWidth, lipgloss.Width(d.Dimension))
		}
		for _, d := range r.Breakdown {
			b.WriteString(s.Text.Render(padRight(d.Dimension, nameWidth)))
			b.WriteString("  ")
			b.WriteString(Bar(d.Score, model.MaxDimensionScore, barWidth, s))
			b.WriteString(s.Dim.Render(fmt.Sprintf("  %d/%d", d.Score, model.MaxDimensionScore)))
			b.WriteString("\n")
			if d.Feedback != "" {
				b.WriteString(s.Dim.Width(width - 4).PaddingLeft(2).Render(d.Feedback))
				b.WriteString("\n")
			}
		}
	}

	if len(r.WhatsWeak) > 0 {
		section(&b, s, "What Needs Work", width)
		for i, w := range r.WhatsWeak {
			b.WriteString(s.IssueNum.Render(fmt.Sprintf("%02d", i+1)))
			b.WriteString("  ")
			b.WriteString(s.Text.Width(width - 6).Render(w))
			b.WriteString("\n")
		}
	}

	if r.RewrittenPrompt != "" {
		section(&b, s, "Rewritten Prompt", width)
		b.WriteString(s.Rewrite.Width(width - 2).Render(r.RewrittenPrompt))
		b.WriteString("\n")
	}

	if len(r.WhatChanged) > 0 {
		section(&b, s, "What Changed", width)
		for _, c := range r.WhatChanged {
			b.WriteString(s.Dim.Render("• "))
			b.WriteString(s.Text.Width(width - 4).Render(c))
			b.WriteString("\n")
		}
	}

	if r.Usage.InputTokens > 0 || r.Usage.OutputTokens > 0 {
		b.WriteString("\n")
		b.WriteString(s.Dim.Render(fmt.Sprintf("tokens: %s in / %s out",
			FormatTokens(r.Usage.InputTokens), FormatTokens(r.Usage.OutputTokens))))
		b.WriteString("\n")
	}

	return b.String()
}

func section(b *strings.Builder, s Styles, title string, width int) {
	b.WriteString("\n")
	b.WriteString(s.Section.Render(strings.ToUpper(title)))
	b.WriteString("\n")
	b.WriteString(s.Rule.Render(strings.Repeat("─", min(width, 40))))
	b.WriteString("\n")
}

// Bar renders score out of outOf as a horizontal bar of width cells.
// Scores outside [0, outOf] are clamped.
func Bar(score, outOf, width int, s Styles) string {
	pct := Percent(score, outOf)
	filled := pct * width / 100
	fill := lipgloss.NewStyle().Foreground(s.Theme().GradeColor(model.GradeForScore(pct)))
	return fill.Render(strings.Repeat("█", filled)) + s.Rule.Render(strings.Repeat("░", width-filled))
}

// Percent returns score as a percentage of outOf, clamped to 0-100.
func Percent(score, outOf int) int {
	if outOf <= 0 {
		return 0
	}
	pct := score * 100 / outOf
	return max(0, min(pct, 100))
}

// FormatTokens formats a token count for display (e.g., "12.3k").
func FormatTokens(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 10000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.0fk", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// padRight pads a string with spaces to reach the desired visible width.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
