package cmd

import (
	"github.com/spf13/cobra"
	"github.com/timvw/prompt-grader/internal/tui"
)

var flagTUITheme string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal form to grade prompts",
	Long: `Launch an interactive terminal UI with a prompt field and an optional
context field. Press ctrl+s to grade; the result view can copy the rewritten
prompt to the clipboard.

Logs go to stderr; redirect it (2>file) to keep them off the screen.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close(cmd.Context())

		t := &tui.TUI{
			Evaluator: a.evaluator,
			ThemeName: flagTUITheme,
		}
		return t.Run(cmd.Context())
	},
}

func init() {
	tuiCmd.Flags().StringVar(&flagTUITheme, "theme", "dark", "color theme: dark, light")
	rootCmd.AddCommand(tuiCmd)
}
