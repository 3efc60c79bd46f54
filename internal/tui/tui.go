// Package tui is the interactive terminal front end: a prompt form, a
// spinner while the model is working, and a scrollable result view.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/timvw/prompt-grader/internal/evaluator"
	"github.com/timvw/prompt-grader/internal/model"
	"github.com/timvw/prompt-grader/internal/report"
)

// TUI runs the interactive grader.
type TUI struct {
	Evaluator *evaluator.Evaluator
	ThemeName string // "dark" or "light"
}

type viewMode int

const (
	modeForm viewMode = iota
	modeResult
)

type focusField int

const (
	focusPrompt focusField = iota
	focusContext
)

const copyResetDelay = 2 * time.Second

// evalResultMsg carries the outcome of one evaluation back to Update.
type evalResultMsg struct {
	reply *evaluator.Reply
	err   error
}

// copyResetMsg clears the "copied" marker.
type copyResetMsg struct{}

type tuiModel struct {
	evaluator *evaluator.Evaluator
	ctx       context.Context
	styles    report.Styles

	mode  viewMode
	focus focusField

	prompt       textarea.Model
	contextInput textarea.Model
	spinner      spinner.Model
	result       viewport.Model

	loading  bool
	errMsg   string
	reply    *evaluator.Reply
	copied   bool
	copyText func(string) error

	width  int
	height int
}

// Run starts the program and blocks until the user quits.
func (t *TUI) Run(ctx context.Context) error {
	m := newModel(ctx, t.Evaluator, report.ThemeByName(t.ThemeName))
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(ctx context.Context, ev *evaluator.Evaluator, theme report.Theme) *tuiModel {
	prompt := textarea.New()
	prompt.Placeholder = "Paste the prompt you want graded..."
	prompt.ShowLineNumbers = false
	prompt.CharLimit = 0
	prompt.SetHeight(8)
	prompt.Focus()

	extra := textarea.New()
	extra.Placeholder = "What is this prompt for? (optional)"
	extra.ShowLineNumbers = false
	extra.CharLimit = 0
	extra.SetHeight(3)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &tuiModel{
		evaluator:    ev,
		ctx:          ctx,
		styles:       report.NewStyles(theme),
		prompt:       prompt,
		contextInput: extra,
		spinner:      sp,
		result:       viewport.New(80, 20),
		copyText:     clipboard.WriteAll,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return textarea.Blink
}

// evaluate runs the model call off the UI goroutine.
func (m *tuiModel) evaluate(req model.EvaluationRequest) tea.Cmd {
	ev := m.evaluator
	ctx := m.ctx
	return func() tea.Msg {
		reply, err := ev.Evaluate(ctx, req)
		return evalResultMsg{reply: reply, err: err}
	}
}

// canSubmit mirrors the disabled state of the browser's submit button.
func (m *tuiModel) canSubmit() bool {
	return !m.loading && strings.TrimSpace(m.prompt.Value()) != ""
}

func (m *tuiModel) submit() tea.Cmd {
	if !m.canSubmit() {
		return nil
	}
	m.loading = true
	m.errMsg = ""
	req := model.EvaluationRequest{
		Prompt:  m.prompt.Value(),
		Context: m.contextInput.Value(),
	}
	return tea.Batch(m.spinner.Tick, m.evaluate(req))
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case evalResultMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = evaluator.AsError(msg.err).Message()
			return m, nil
		}
		m.reply = msg.reply
		m.mode = modeResult
		m.copied = false
		m.renderResult()
		return m, nil

	case copyResetMsg:
		m.copied = false
		return m, nil
	}

	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case modeResult:
		return m.handleResultKey(msg)
	default:
		return m.handleFormKey(msg)
	}
}

func (m *tuiModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit

	case "ctrl+s":
		return m, m.submit()

	case "tab", "shift+tab":
		if m.loading {
			return m, nil
		}
		return m, m.toggleFocus()
	}

	// Inputs are frozen while a request is outstanding.
	if m.loading {
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusPrompt {
		m.prompt, cmd = m.prompt.Update(msg)
	} else {
		m.contextInput, cmd = m.contextInput.Update(msg)
	}
	return m, cmd
}

func (m *tuiModel) toggleFocus() tea.Cmd {
	if m.focus == focusPrompt {
		m.focus = focusContext
		m.prompt.Blur()
		return m.contextInput.Focus()
	}
	m.focus = focusPrompt
	m.contextInput.Blur()
	return m.prompt.Focus()
}

func (m *tuiModel) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc", "e":
		// Back to the form with the inputs kept for editing.
		m.mode = modeForm
		return m, nil

	case "n":
		m.reset()
		return m, textarea.Blink

	case "c":
		if m.reply == nil || m.reply.Result.RewrittenPrompt == "" {
			return m, nil
		}
		if err := m.copyText(m.reply.Result.RewrittenPrompt); err != nil {
			m.errMsg = fmt.Sprintf("Copy failed: %v", err)
			return m, nil
		}
		m.copied = true
		return m, tea.Tick(copyResetDelay, func(_ time.Time) tea.Msg { return copyResetMsg{} })
	}

	var cmd tea.Cmd
	m.result, cmd = m.result.Update(msg)
	return m, cmd
}

// reset clears the form and result for a new prompt.
func (m *tuiModel) reset() {
	m.mode = modeForm
	m.reply = nil
	m.errMsg = ""
	m.copied = false
	m.prompt.Reset()
	m.contextInput.Reset()
	m.focus = focusPrompt
	m.contextInput.Blur()
	m.prompt.Focus()
}

func (m *tuiModel) layout() {
	w := max(m.width-4, 20)
	m.prompt.SetWidth(w)
	m.contextInput.SetWidth(w)
	m.result.Width = m.width
	m.result.Height = max(m.height-4, 5)
	if m.reply != nil {
		m.renderResult()
	}
}

func (m *tuiModel) renderResult() {
	if m.reply == nil {
		return
	}
	m.result.SetContent(report.Render(m.reply.Result, m.styles, m.width-2))
	m.result.GotoTop()
}

func (m *tuiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.mode {
	case modeResult:
		return m.viewResult()
	default:
		return m.viewForm()
	}
}

func (m *tuiModel) viewForm() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("  PROMPT GRADER"))
	b.WriteString("\n")
	b.WriteString(s.Rule.Render("  " + strings.Repeat("─", max(m.width-4, 10))))
	b.WriteString("\n\n")

	b.WriteString(s.Section.Render("  YOUR PROMPT"))
	b.WriteString("\n")
	b.WriteString(indent(m.prompt.View()))
	b.WriteString("\n\n")

	b.WriteString(s.Dim.Render("  EXTRA CONTEXT (optional)"))
	b.WriteString("\n")
	b.WriteString(indent(m.contextInput.View()))
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(indent(s.Err.Render(m.errMsg)))
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString("  " + m.spinner.View() + s.Dim.Render(" Reading your prompt..."))
		b.WriteString("\n")
		return b.String()
	}

	hints := []string{"ctrl+s", "analyze & improve", "tab", "switch field", "esc", "quit"}
	if !m.canSubmit() {
		hints[1] = "enter a prompt first"
	}
	b.WriteString("  " + m.renderHints(hints...))
	b.WriteString("\n")
	return b.String()
}

func (m *tuiModel) viewResult() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("  PROMPT GRADER"))
	if m.copied {
		b.WriteString(s.Dim.Render("  ✓ Copied"))
	}
	if m.errMsg != "" {
		b.WriteString(s.Dim.Render("  " + m.errMsg))
	}
	b.WriteString("\n")
	b.WriteString(m.result.View())
	b.WriteString("\n")
	b.WriteString("  " + m.renderHints("c", "copy rewrite", "e", "edit", "n", "new prompt", "↑/↓", "scroll", "q", "quit"))
	return b.String()
}

// renderHints renders key/description pairs.
func (m *tuiModel) renderHints(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, m.styles.HintKey.Render(pairs[i])+" "+m.styles.HintDesc.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
