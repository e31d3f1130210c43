package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const envPrefix = "PRODUCTAI_"

// Providers lists the accepted values of Config.Provider. An empty provider
// selects the first configured one in this order.
var Providers = []string{"openai", "claude", "gemini", "llamacpp", "ollama", "mock"}

// Config holds all server configuration.
type Config struct {
	Port     int    `yaml:"port"`
	APIKey   string `yaml:"api_key"`
	Provider string `yaml:"provider"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	ClaudeAPIKey string `yaml:"claude_api_key"`
	ClaudeModel  string `yaml:"claude_model"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	LlamaCppURL   string `yaml:"llamacpp_url"`
	LlamaCppModel string `yaml:"llamacpp_model"`

	OllamaURL   string `yaml:"ollama_url"`
	OllamaModel string `yaml:"ollama_model"`

	MaxDescriptionLength int   `yaml:"max_description_length"`
	MaxBodyBytes         int64 `yaml:"max_body_bytes"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func defaults() Config {
	return Config{
		Port:                 9000,
		OpenAIModel:          "gpt-3.5-turbo",
		ClaudeModel:          "claude-sonnet-4-5-20250929",
		GeminiModel:          "gemini-2.0-flash",
		OllamaModel:          "qwen2.5:1.5b",
		MaxDescriptionLength: 10000,
		MaxBodyBytes:         64 * 1024,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load loads configuration from a YAML file (if path is non-empty), then
// applies PRODUCTAI_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := []struct {
		key string
		dst *string
	}{
		{"API_KEY", &c.APIKey},
		{"PROVIDER", &c.Provider},
		{"OPENAI_API_KEY", &c.OpenAIAPIKey},
		{"OPENAI_MODEL", &c.OpenAIModel},
		{"OPENAI_BASE_URL", &c.OpenAIBaseURL},
		{"CLAUDE_API_KEY", &c.ClaudeAPIKey},
		{"CLAUDE_MODEL", &c.ClaudeModel},
		{"GEMINI_API_KEY", &c.GeminiAPIKey},
		{"GEMINI_MODEL", &c.GeminiModel},
		{"LLAMACPP_URL", &c.LlamaCppURL},
		{"LLAMACPP_MODEL", &c.LlamaCppModel},
		{"OLLAMA_URL", &c.OllamaURL},
		{"OLLAMA_MODEL", &c.OllamaModel},
		{"LOG_LEVEL", &c.LogLevel},
		{"LOG_FORMAT", &c.LogFormat},
	}
	for _, s := range strs {
		if v := os.Getenv(envPrefix + s.key); v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv(envPrefix + "PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid %sPORT %q: %w", envPrefix, v, err)
		}
		c.Port = p
	}
	if v := os.Getenv(envPrefix + "MAX_DESCRIPTION_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid %sMAX_DESCRIPTION_LENGTH %q: %w", envPrefix, v, err)
		}
		c.MaxDescriptionLength = n
	}
	if v := os.Getenv(envPrefix + "MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: invalid %sMAX_BODY_BYTES %q: %w", envPrefix, v, err)
		}
		c.MaxBodyBytes = n
	}
	return nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port out of range: %d", c.Port)
	}
	if c.Provider != "" && !validProvider(c.Provider) {
		return fmt.Errorf("config: unknown provider %q (want one of %s)", c.Provider, strings.Join(Providers, ", "))
	}
	if c.MaxDescriptionLength <= 0 {
		return fmt.Errorf("config: max_description_length must be positive, got %d", c.MaxDescriptionLength)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func validProvider(p string) bool {
	for _, v := range Providers {
		if v == p {
			return true
		}
	}
	return false
}
