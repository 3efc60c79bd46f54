// Package config loads prompt-grader configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (PROMPT_GRADER_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .prompt-grader.yaml in current directory
//  2. ~/.config/prompt-grader/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all prompt-grader configuration.
type Config struct {
	// LLM settings
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	MaxTokens int64  `yaml:"max_tokens"`

	// CaptureContent records prompts and replies on trace spans.
	CaptureContent bool `yaml:"capture_content"`

	// HTTP server
	Listen         string   `yaml:"listen"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`

	// Logging
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs, e.g. "Authorization=Basic abc123"

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Default models per provider.
const (
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Provider:     "anthropic",
		MaxTokens:    2000,
		Listen:       ":8080",
		MaxBodyBytes: 64 * 1024,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	if err := mergeEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "gemini":
	default:
		return fmt.Errorf("unknown provider %q (supported: anthropic, openai, gemini)", c.Provider)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (supported: text, json)", c.LogFormat)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// ResolvedModel returns the configured model, or the provider's default.
func (c *Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case "openai":
		return DefaultOpenAIModel
	case "gemini":
		return DefaultGeminiModel
	default:
		return DefaultAnthropicModel
	}
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	if data, err := os.ReadFile(".prompt-grader.yaml"); err == nil {
		return ".prompt-grader.yaml", data, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "prompt-grader", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.MaxTokens > 0 {
		cfg.MaxTokens = file.MaxTokens
	}
	if file.CaptureContent {
		cfg.CaptureContent = true
	}
	if file.Listen != "" {
		cfg.Listen = file.Listen
	}
	if len(file.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = file.AllowedOrigins
	}
	if file.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = file.MaxBodyBytes
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogFormat != "" {
		cfg.LogFormat = file.LogFormat
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) error {
	if v := os.Getenv("PROMPT_GRADER_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("PROMPT_GRADER_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PROMPT_GRADER_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("PROMPT_GRADER_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("PROMPT_GRADER_MAX_TOKENS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid PROMPT_GRADER_MAX_TOKENS %q: %w", v, err)
		}
		cfg.MaxTokens = n
	}
	if v := os.Getenv("PROMPT_GRADER_CAPTURE_CONTENT"); v == "true" || v == "1" {
		cfg.CaptureContent = true
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Listen = ":" + v
	}
	if v := os.Getenv("PROMPT_GRADER_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("PROMPT_GRADER_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("PROMPT_GRADER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PROMPT_GRADER_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}

	// API key fallbacks, provider-specific first.
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		switch cfg.Provider {
		case "anthropic":
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "openai":
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini":
			cfg.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = AzureBaseURL(cfg.Provider, os.Getenv("AZURE_RESOURCE_NAME"))
	}
	return nil
}

// AzureBaseURL derives the Azure endpoint for a provider from the resource
// name. Returns "" when there is no resource name or the provider has no
// Azure deployment.
func AzureBaseURL(provider, resourceName string) string {
	if resourceName == "" {
		return ""
	}
	switch provider {
	case "anthropic":
		// The Anthropic SDK appends v1/messages to the base URL.
		return fmt.Sprintf("https://%s.services.ai.azure.com/anthropic/", resourceName)
	case "openai":
		return fmt.Sprintf("https://%s.openai.azure.com/openai/v1", resourceName)
	}
	return ""
}

// IsAzureEndpoint returns true if the URL is an Azure endpoint.
func IsAzureEndpoint(url string) bool {
	return strings.Contains(url, ".azure.com") || strings.Contains(url, ".azure.us")
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
