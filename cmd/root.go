package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/timvw/prompt-grader/internal/config"
	"github.com/timvw/prompt-grader/internal/evaluator"
	"github.com/timvw/prompt-grader/internal/llm"
	telem "github.com/timvw/prompt-grader/internal/otel"
)

// Version is injected at build time with -ldflags "-X ...cmd.Version=...".
var Version = "dev"

var (
	// Global flags. Empty or zero means "use config".
	flagProvider  string
	flagModel     string
	flagBaseURL   string
	flagAPIKey    string
	flagMaxTokens int64
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "prompt-grader",
	Short: "Score a prompt and get a rewritten version from an LLM",
	Long: `prompt-grader sends a prompt to an LLM with a fixed grading instruction
and shows the score, a per-dimension breakdown, what is weak and a rewritten
prompt.

Run "serve" for the web page, "analyze" for a one-shot result and "tui" for
an interactive terminal form.

Configuration is loaded from .prompt-grader.yaml or environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider: anthropic, openai, gemini (default: anthropic)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "LLM model name (default depends on provider)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "override LLM API base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "override LLM API key")
	rootCmd.PersistentFlags().Int64Var(&flagMaxTokens, "max-tokens", 0, "max completion tokens (default: 2000)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// loadConfig loads file and env config, then applies command-line flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagMaxTokens > 0 {
		cfg.MaxTokens = flagMaxTokens
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newProvider returns the configured LLM provider.
func newProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set PROMPT_GRADER_API_KEY or %s", providerKeyEnv(cfg.Provider))
	}

	pc := llm.Config{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		Model:          cfg.ResolvedModel(),
		MaxTokens:      cfg.MaxTokens,
		ExtraHeaders:   map[string]string{},
		CaptureContent: cfg.CaptureContent,
	}

	// Azure AI Foundry needs "api-key" next to the SDK's own auth header.
	if os.Getenv("AZURE_RESOURCE_NAME") != "" || config.IsAzureEndpoint(cfg.BaseURL) {
		pc.ExtraHeaders["api-key"] = cfg.APIKey
	}

	switch cfg.Provider {
	case "anthropic":
		return llm.NewAnthropicProvider(pc), nil
	case "openai":
		return llm.NewOpenAIProvider(pc), nil
	case "gemini":
		return llm.NewGeminiProvider(ctx, pc)
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: anthropic, openai, gemini)", cfg.Provider)
	}
}

func providerKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY or AZURE_OPENAI_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY or GOOGLE_API_KEY"
	default:
		return "ANTHROPIC_API_KEY or AZURE_OPENAI_API_KEY"
	}
}

// app bundles what every command needs to run an evaluation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	telemetry *telem.Telemetry
	evaluator *evaluator.Evaluator
}

// newApp loads config and wires logging, telemetry and the evaluator.
// Callers must call close when done.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	if cfg.ConfigFile != "" {
		logger.Debug("config loaded", "file", cfg.ConfigFile)
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		logger.Warn("otel init failed", "err", err)
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		if tel != nil {
			_ = tel.Shutdown(ctx)
		}
		return nil, err
	}

	var metrics *telem.Metrics
	if tel != nil {
		metrics = tel.Metrics
	}

	logger.Debug("provider ready",
		"provider", provider.Name(),
		"model", provider.Model(),
		"otel", tel.Enabled(),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: tel,
		evaluator: &evaluator.Evaluator{
			Provider: provider,
			Metrics:  metrics,
			Logger:   logger,
		},
	}, nil
}

// close flushes telemetry.
func (a *app) close(ctx context.Context) {
	if a.telemetry == nil {
		return
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Warn("otel shutdown failed", "err", err)
	}
}

// readPrompt joins args, or reads stdin when there are none or the only
// argument is "-".
func readPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
