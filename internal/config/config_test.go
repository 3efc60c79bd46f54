package config

import (
	"os"
	"path/filepath"
	"testing"
)

// envKeys lists every variable Load reads, so tests start from a clean slate.
var envKeys = []string{
	"PROMPT_GRADER_PROVIDER", "PROMPT_GRADER_MODEL", "PROMPT_GRADER_BASE_URL",
	"PROMPT_GRADER_API_KEY", "PROMPT_GRADER_MAX_TOKENS", "PROMPT_GRADER_CAPTURE_CONTENT",
	"PROMPT_GRADER_LISTEN", "PROMPT_GRADER_ALLOWED_ORIGINS", "PROMPT_GRADER_LOG_LEVEL",
	"PROMPT_GRADER_LOG_FORMAT", "PORT",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_HEADERS",
	"AZURE_OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY",
	"GEMINI_API_KEY", "GOOGLE_API_KEY", "AZURE_RESOURCE_NAME",
}

// isolate clears the environment and moves into an empty directory with no
// home config.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".prompt-grader.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Provider != "anthropic" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.MaxTokens != 2000 {
		t.Errorf("MaxTokens: got %d, want %d", cfg.MaxTokens, 2000)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("Listen: got %q, want %q", cfg.Listen, ":8080")
	}
	if cfg.ResolvedModel() != DefaultAnthropicModel {
		t.Errorf("ResolvedModel: got %q, want %q", cfg.ResolvedModel(), DefaultAnthropicModel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestResolvedModel(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		want     string
	}{
		{"anthropic", "", DefaultAnthropicModel},
		{"openai", "", DefaultOpenAIModel},
		{"gemini", "", DefaultGeminiModel},
		{"openai", "gpt-5", "gpt-5"},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.model, func(t *testing.T) {
			cfg := &Config{Provider: tt.provider, Model: tt.model}
			if got := cfg.ResolvedModel(); got != tt.want {
				t.Errorf("ResolvedModel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"gemini", func(c *Config) { c.Provider = "gemini" }, false},
		{"unknown provider", func(c *Config) { c.Provider = "llama" }, true},
		{"json logs", func(c *Config) { c.LogFormat = "json" }, false},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }, true},
		{"zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsAzureEndpoint(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://myresource.openai.azure.com/openai/v1", true},
		{"https://myresource.services.ai.azure.com/anthropic/", true},
		{"https://myresource.azure.us/foo", true},
		{"https://api.anthropic.com/", false},
		{"https://api.openai.com/v1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := IsAzureEndpoint(tt.url)
			if got != tt.want {
				t.Errorf("IsAzureEndpoint(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestAzureBaseURL(t *testing.T) {
	tests := []struct {
		provider string
		resource string
		want     string
	}{
		{"anthropic", "res", "https://res.services.ai.azure.com/anthropic/"},
		{"openai", "res", "https://res.openai.azure.com/openai/v1"},
		{"gemini", "res", ""},
		{"anthropic", "", ""},
	}

	for _, tt := range tests {
		if got := AzureBaseURL(tt.provider, tt.resource); got != tt.want {
			t.Errorf("AzureBaseURL(%q, %q) = %q, want %q", tt.provider, tt.resource, got, tt.want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `provider: openai
model: gpt-4o-mini
api_key: test-key-123
max_tokens: 4000
listen: "127.0.0.1:9090"
allowed_origins:
  - "http://localhost:5173"
  - "https://grader.example.com"
log_format: json
capture_content: true
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ConfigFile != ".prompt-grader.yaml" {
		t.Errorf("ConfigFile: got %q", cfg.ConfigFile)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "openai")
	}
	if cfg.APIKey != "test-key-123" {
		t.Errorf("APIKey: got %q, want %q", cfg.APIKey, "test-key-123")
	}
	if cfg.MaxTokens != 4000 {
		t.Errorf("MaxTokens: got %d, want %d", cfg.MaxTokens, 4000)
	}
	if cfg.Listen != "127.0.0.1:9090" {
		t.Errorf("Listen: got %q", cfg.Listen)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://grader.example.com" {
		t.Errorf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q", cfg.LogFormat)
	}
	if !cfg.CaptureContent {
		t.Error("CaptureContent: got false, want true")
	}
	// Unset keys keep their defaults.
	if cfg.MaxBodyBytes != 64*1024 {
		t.Errorf("MaxBodyBytes: got %d", cfg.MaxBodyBytes)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "provider: [unterminated\n")

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error for malformed YAML")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `provider: openai
model: gpt-4o-mini
api_key: file-key
listen: ":7000"
`)

	t.Setenv("PROMPT_GRADER_PROVIDER", "anthropic")
	t.Setenv("PROMPT_GRADER_MODEL", "claude-sonnet-4-5")
	t.Setenv("PROMPT_GRADER_API_KEY", "env-key")
	t.Setenv("PROMPT_GRADER_MAX_TOKENS", "1500")
	t.Setenv("PORT", "3000")
	t.Setenv("PROMPT_GRADER_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider != "anthropic" {
		t.Errorf("Provider: got %q, want %q (env should override file)", cfg.Provider, "anthropic")
	}
	if cfg.Model != "claude-sonnet-4-5" {
		t.Errorf("Model: got %q, want %q (env should override file)", cfg.Model, "claude-sonnet-4-5")
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey: got %q, want %q (env should override file)", cfg.APIKey, "env-key")
	}
	if cfg.MaxTokens != 1500 {
		t.Errorf("MaxTokens: got %d, want 1500", cfg.MaxTokens)
	}
	if cfg.Listen != ":3000" {
		t.Errorf("Listen: got %q, want %q (PORT should override file)", cfg.Listen, ":3000")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://a.test" {
		t.Errorf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
}

func TestInvalidMaxTokensEnv(t *testing.T) {
	isolate(t)
	t.Setenv("PROMPT_GRADER_MAX_TOKENS", "lots")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric PROMPT_GRADER_MAX_TOKENS")
	}
}

func TestAPIKeyFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		env      map[string]string
		want     string
	}{
		{"anthropic key", "anthropic", map[string]string{"ANTHROPIC_API_KEY": "a"}, "a"},
		{"openai key", "openai", map[string]string{"OPENAI_API_KEY": "o", "ANTHROPIC_API_KEY": "a"}, "o"},
		{"gemini key", "gemini", map[string]string{"GEMINI_API_KEY": "g"}, "g"},
		{"google key", "gemini", map[string]string{"GOOGLE_API_KEY": "gg"}, "gg"},
		{"azure wins", "anthropic", map[string]string{"AZURE_OPENAI_API_KEY": "z", "ANTHROPIC_API_KEY": "a"}, "z"},
		{"explicit wins", "anthropic", map[string]string{"PROMPT_GRADER_API_KEY": "p", "ANTHROPIC_API_KEY": "a"}, "p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("PROMPT_GRADER_PROVIDER", tt.provider)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.APIKey != tt.want {
				t.Errorf("APIKey: got %q, want %q", cfg.APIKey, tt.want)
			}
		})
	}
}

func TestAzureResourceSetsBaseURL(t *testing.T) {
	isolate(t)
	t.Setenv("AZURE_RESOURCE_NAME", "myres")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.BaseURL != "https://myres.services.ai.azure.com/anthropic/" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
}
