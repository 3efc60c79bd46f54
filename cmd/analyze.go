package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/timvw/prompt-grader/internal/evaluator"
	"github.com/timvw/prompt-grader/internal/model"
	"github.com/timvw/prompt-grader/internal/report"
)

var (
	flagContext string
	flagFormat  string
	flagTheme   string
	flagWidth   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [prompt...]",
	Short: "Grade a single prompt and print the result",
	Long: `Grade a prompt once. The prompt is taken from the arguments, or from
stdin when no argument (or "-") is given.

--format json prints exactly what POST /api/analyze would return.
--format text prints a styled report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := readPrompt(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		switch flagFormat {
		case "json", "text":
		default:
			return fmt.Errorf("unknown format %q (supported: json, text)", flagFormat)
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close(cmd.Context())

		req := model.EvaluationRequest{Prompt: prompt, Context: flagContext}
		reply, err := a.evaluator.Evaluate(cmd.Context(), req)
		return writeAnalysis(cmd.OutOrStdout(), reply, err, flagFormat, flagTheme, flagWidth)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&flagContext, "context", "", "extra context: what the prompt is for")
	analyzeCmd.Flags().StringVarP(&flagFormat, "format", "f", "text", "output format: text, json")
	analyzeCmd.Flags().StringVar(&flagTheme, "theme", "dark", "color theme: dark, light")
	analyzeCmd.Flags().IntVar(&flagWidth, "width", 80, "report width in columns")
	rootCmd.AddCommand(analyzeCmd)
}

// writeAnalysis prints a reply or an evaluation error in the chosen format.
// Errors are also returned so the process exits non-zero.
func writeAnalysis(w io.Writer, reply *evaluator.Reply, evalErr error, format, theme string, width int) error {
	if evalErr != nil {
		e := evaluator.AsError(evalErr)
		if format == "json" {
			data, err := json.Marshal(model.ErrorResponse{Error: e.Message()})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(data))
		}
		return errors.New(e.Message())
	}

	if format == "json" {
		_, err := fmt.Fprintln(w, string(reply.Raw))
		return err
	}
	_, err := fmt.Fprint(w, report.Render(reply.Result, report.NewStyles(report.ThemeByName(theme)), width))
	return err
}
