package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/timvw/prompt-grader/internal/model"
)

// Theme defines all colors used by the report and the TUI.
// Use DarkTheme() or LightTheme() to get a pre-built theme.
type Theme struct {
	Primary   lipgloss.Color // title, section headings
	Secondary lipgloss.Color // focused input border
	Error     lipgloss.Color // error banner
	Warning   lipgloss.Color // issue numbers
	Text      lipgloss.Color // primary text
	TextMuted lipgloss.Color // feedback, hints
	Border    lipgloss.Color // separators, empty bar cells

	// Grade colors, also used for dimension bars by percentage band.
	Weak      lipgloss.Color
	Average   lipgloss.Color
	Good      lipgloss.Color
	Excellent lipgloss.Color
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#c8ff00"),
		Secondary: lipgloss.Color("#5c9cf5"),
		Error:     lipgloss.Color("#ff6b6b"),
		Warning:   lipgloss.Color("#ff9500"),
		Text:      lipgloss.Color("#efefef"),
		TextMuted: lipgloss.Color("#808080"),
		Border:    lipgloss.Color("#2a2a2a"),
		Weak:      lipgloss.Color("#ff4444"),
		Average:   lipgloss.Color("#ff9500"),
		Good:      lipgloss.Color("#c8ff00"),
		Excellent: lipgloss.Color("#00ff88"),
	}
}

// LightTheme returns a light theme for bright terminal backgrounds.
// The lime and mint grade colors are darkened to stay readable on white.
func LightTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#4d7c0f"),
		Secondary: lipgloss.Color("#0550ae"),
		Error:     lipgloss.Color("#cf222e"),
		Warning:   lipgloss.Color("#bf8700"),
		Text:      lipgloss.Color("#1f2328"),
		TextMuted: lipgloss.Color("#656d76"),
		Border:    lipgloss.Color("#d0d7de"),
		Weak:      lipgloss.Color("#cf222e"),
		Average:   lipgloss.Color("#bf8700"),
		Good:      lipgloss.Color("#4d7c0f"),
		Excellent: lipgloss.Color("#116329"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// GradeColor returns the color for a grade label.
func (t Theme) GradeColor(grade string) lipgloss.Color {
	switch grade {
	case model.GradeWeak:
		return t.Weak
	case model.GradeAverage:
		return t.Average
	case model.GradeGood:
		return t.Good
	default:
		return t.Excellent
	}
}

// Styles holds all lipgloss styles derived from a Theme.
type Styles struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Rule     lipgloss.Style
	Text     lipgloss.Style
	Dim      lipgloss.Style
	Err      lipgloss.Style
	IssueNum lipgloss.Style
	Rewrite  lipgloss.Style

	HintKey  lipgloss.Style
	HintDesc lipgloss.Style

	theme Theme
}

// NewStyles builds all styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Section:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Rule:     lipgloss.NewStyle().Foreground(t.Border),
		Text:     lipgloss.NewStyle().Foreground(t.Text),
		Dim:      lipgloss.NewStyle().Foreground(t.TextMuted),
		Err:      lipgloss.NewStyle().Foreground(t.Error).Border(lipgloss.RoundedBorder()).BorderForeground(t.Error).Padding(0, 1),
		IssueNum: lipgloss.NewStyle().Foreground(t.Warning),
		Rewrite:  lipgloss.NewStyle().Foreground(t.Text).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Primary).PaddingLeft(1),

		HintKey:  lipgloss.NewStyle().Foreground(t.Text),
		HintDesc: lipgloss.NewStyle().Foreground(t.TextMuted),

		theme: t,
	}
}

// Theme returns the theme the styles were built from.
func (s Styles) Theme() Theme {
	return s.theme
}
