package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mlorentedev/productai/internal/adapter"
	"github.com/mlorentedev/productai/internal/config"
)

// ErrNoProvider is returned when no provider is configured and mock mode is off.
var ErrNoProvider = errors.New("no completion provider configured")

// BuildAdapters instantiates every configured provider and picks the one
// serving completions: cfg.Provider when set, otherwise the first
// configured in config.Providers order. useMock replaces everything with the
// mock adapter.
func BuildAdapters(cfg config.Config, useMock bool) (adapter.Completer, map[string]adapter.Completer, []adapter.ModelInfo, error) {
	adapters := make(map[string]adapter.Completer)
	models := make(map[string]adapter.ModelInfo)

	if useMock || cfg.Provider == "mock" {
		m := &adapter.MockAdapter{Delay: 50 * time.Millisecond}
		adapters["mock"] = m
		slog.Info("mode: mock adapter enabled")
		return m, adapters, []adapter.ModelInfo{{ID: "mock", Name: m.Name(), Provider: "mock", Active: true}}, nil
	}

	// Streaming clients carry no overall timeout; the request context
	// bounds them instead.
	streaming := &http.Client{}

	if cfg.OpenAIAPIKey != "" {
		a := &adapter.OpenAIAdapter{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			BaseURL:    cfg.OpenAIBaseURL,
			HTTPClient: streaming,
		}
		adapters["openai"] = a
		models["openai"] = adapter.ModelInfo{ID: cfg.OpenAIModel, Name: a.Name(), Provider: "openai"}
		slog.Info("provider: openai enabled", "model", cfg.OpenAIModel)
	}

	if cfg.ClaudeAPIKey != "" {
		a := &adapter.ClaudeAdapter{
			APIKey:     cfg.ClaudeAPIKey,
			Model:      cfg.ClaudeModel,
			HTTPClient: streaming,
		}
		adapters["claude"] = a
		models["claude"] = adapter.ModelInfo{ID: cfg.ClaudeModel, Name: a.Name(), Provider: "claude"}
		slog.Info("provider: claude enabled", "model", cfg.ClaudeModel)
	}

	if cfg.GeminiAPIKey != "" {
		a := &adapter.GeminiAdapter{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			HTTPClient: streaming,
		}
		adapters["gemini"] = a
		models["gemini"] = adapter.ModelInfo{ID: cfg.GeminiModel, Name: a.Name(), Provider: "gemini"}
		slog.Info("provider: gemini enabled", "model", cfg.GeminiModel)
	}

	if cfg.LlamaCppURL != "" {
		model := cfg.LlamaCppModel
		if model == "" {
			model = "qwen2.5-1.5b-gpu"
		}
		a := &adapter.LlamaCppAdapter{
			BaseURL: cfg.LlamaCppURL,
			Model:   model,
			Client:  streaming,
		}
		adapters["llamacpp"] = a
		models["llamacpp"] = adapter.ModelInfo{ID: model, Name: a.Name(), Provider: "llamacpp"}
		slog.Info("provider: llama.cpp enabled", "url", cfg.LlamaCppURL, "model", model)
	}

	if cfg.OllamaURL != "" {
		a := &adapter.OllamaAdapter{
			BaseURL: cfg.OllamaURL,
			Model:   cfg.OllamaModel,
			Client:  streaming,
		}
		adapters["ollama"] = a
		models["ollama"] = adapter.ModelInfo{ID: cfg.OllamaModel, Name: a.Name(), Provider: "ollama"}
		slog.Info("provider: ollama enabled", "url", cfg.OllamaURL, "model", cfg.OllamaModel)
	}

	name := cfg.Provider
	if name == "" {
		for _, p := range config.Providers {
			if _, ok := adapters[p]; ok {
				name = p
				break
			}
		}
	}
	if name == "" {
		return nil, nil, nil, ErrNoProvider
	}
	active, ok := adapters[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("provider %q selected but not configured", name)
	}

	list := make([]adapter.ModelInfo, 0, len(models))
	for _, p := range config.Providers {
		m, ok := models[p]
		if !ok {
			continue
		}
		m.Active = p == name
		list = append(list, m)
	}
	return active, adapters, list, nil
}
