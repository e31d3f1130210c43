package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"API_KEY", "PORT", "PROVIDER", "OPENAI_API_KEY", "CLAUDE_API_KEY", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(envPrefix+k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no file: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"port", cfg.Port, 9000},
		{"provider", cfg.Provider, ""},
		{"openai_model", cfg.OpenAIModel, "gpt-3.5-turbo"},
		{"claude_model", cfg.ClaudeModel, "claude-sonnet-4-5-20250929"},
		{"gemini_model", cfg.GeminiModel, "gemini-2.0-flash"},
		{"ollama_url", cfg.OllamaURL, ""},
		{"ollama_model", cfg.OllamaModel, "qwen2.5:1.5b"},
		{"llamacpp_url", cfg.LlamaCppURL, ""},
		{"max_description_length", cfg.MaxDescriptionLength, 10000},
		{"max_body_bytes", cfg.MaxBodyBytes, int64(64 * 1024)},
		{"log_level", cfg.LogLevel, "info"},
		{"log_format", cfg.LogFormat, "text"},
		{"api_key", cfg.APIKey, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	content := `port: 9999
provider: claude
ollama_url: "http://jetson.local:11434"
claude_api_key: "sk-test-key"
claude_model: "claude-opus-4-6"
openai_api_key: "sk-openai"
openai_base_url: "https://gateway.internal/v1"
gemini_api_key: "gm-key"
llamacpp_url: "http://localhost:8080"
llamacpp_model: "qwen2.5-1.5b"
max_description_length: 2000
api_key: "my-secret-key"
log_format: json
`
	if err := os.WriteFile(yamlPath, []byte(content), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"port", cfg.Port, 9999},
		{"provider", cfg.Provider, "claude"},
		{"ollama_url", cfg.OllamaURL, "http://jetson.local:11434"},
		{"claude_api_key", cfg.ClaudeAPIKey, "sk-test-key"},
		{"claude_model", cfg.ClaudeModel, "claude-opus-4-6"},
		{"openai_api_key", cfg.OpenAIAPIKey, "sk-openai"},
		{"openai_base_url", cfg.OpenAIBaseURL, "https://gateway.internal/v1"},
		{"openai_model default kept", cfg.OpenAIModel, "gpt-3.5-turbo"},
		{"gemini_api_key", cfg.GeminiAPIKey, "gm-key"},
		{"llamacpp_url", cfg.LlamaCppURL, "http://localhost:8080"},
		{"llamacpp_model", cfg.LlamaCppModel, "qwen2.5-1.5b"},
		{"max_description_length", cfg.MaxDescriptionLength, 2000},
		{"api_key", cfg.APIKey, "my-secret-key"},
		{"log_format", cfg.LogFormat, "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	content := `port: 9999
ollama_url: "http://from-yaml:11434"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv("PRODUCTAI_PORT", "7777")
	t.Setenv("PRODUCTAI_OLLAMA_URL", "http://from-env:11434")
	t.Setenv("PRODUCTAI_CLAUDE_API_KEY", "sk-env-key")
	t.Setenv("PRODUCTAI_OPENAI_API_KEY", "sk-env-openai")
	t.Setenv("PRODUCTAI_LLAMACPP_URL", "http://from-env:8080")
	t.Setenv("PRODUCTAI_LLAMACPP_MODEL", "custom-model")
	t.Setenv("PRODUCTAI_API_KEY", "env-api-key")
	t.Setenv("PRODUCTAI_PROVIDER", "ollama")
	t.Setenv("PRODUCTAI_MAX_BODY_BYTES", "1024")

	cfg, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"port from env", cfg.Port, 7777},
		{"ollama_url from env", cfg.OllamaURL, "http://from-env:11434"},
		{"claude_api_key from env", cfg.ClaudeAPIKey, "sk-env-key"},
		{"openai_api_key from env", cfg.OpenAIAPIKey, "sk-env-openai"},
		{"llamacpp_url from env", cfg.LlamaCppURL, "http://from-env:8080"},
		{"llamacpp_model from env", cfg.LlamaCppModel, "custom-model"},
		{"api_key from env", cfg.APIKey, "env-api-key"},
		{"provider from env", cfg.Provider, "ollama"},
		{"max_body_bytes from env", cfg.MaxBodyBytes, int64(1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadInvalidEnvNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRODUCTAI_PORT", "not-a-port")

	if _, err := Load(""); err == nil {
		t.Error("expected error for invalid PRODUCTAI_PORT, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"every provider", func(c *Config) { c.Provider = "gemini" }, false},
		{"unknown provider", func(c *Config) { c.Provider = "bard" }, true},
		{"port zero", func(c *Config) { c.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Port = 70000 }, true},
		{"negative description limit", func(c *Config) { c.MaxDescriptionLength = -1 }, true},
		{"zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate: got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := defaults()
	cfg.LogLevel = "debug"
	l, err := cfg.SlogLevel()
	if err != nil {
		t.Fatalf("SlogLevel: %v", err)
	}
	if l != slog.LevelDebug {
		t.Errorf("got %v, want %v", l, slog.LevelDebug)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(yamlPath, []byte("{{invalid"), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	_, err := Load(yamlPath)
	if err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
