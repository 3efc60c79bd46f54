package evaluator

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/timvw/prompt-grader/internal/model"
)

// SystemPrompt is the system-level instruction for the prompt critic.
// Loaded from prompts/system.md at compile time.
//
//go:embed prompts/system.md
var SystemPrompt string

// userTemplateText is the user-level message template.
// Loaded from prompts/user.tmpl at compile time.
//
//go:embed prompts/user.tmpl
var userTemplateText string

var userTemplate = template.Must(template.New("user").Parse(userTemplateText))

type userMessageData struct {
	Prompt     string
	Context    string
	Dimensions []string
}

// BuildUserMessage renders the user message for a request. The prompt is
// embedded verbatim; the context block is included only when the request
// carries non-blank context.
func BuildUserMessage(req model.EvaluationRequest) (string, error) {
	data := userMessageData{
		Prompt:     req.Prompt,
		Dimensions: model.Dimensions,
	}
	if req.HasContext() {
		data.Context = req.Context
	}

	var b strings.Builder
	if err := userTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render user message: %w", err)
	}
	return b.String(), nil
}
