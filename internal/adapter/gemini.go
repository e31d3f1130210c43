package adapter

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"

	"google.golang.org/genai"

	"github.com/mlorentedev/productai/internal/completion"
)

const (
	geminiProvider  = "gemini"
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

// GeminiAdapter streams from the Gemini API through google.golang.org/genai.
type GeminiAdapter struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

func (g *GeminiAdapter) Name() string {
	return fmt.Sprintf("Gemini (%s)", g.Model)
}

func (g *GeminiAdapter) Complete(ctx context.Context, msgs []completion.Message) (completion.Stream, error) {
	if err := completion.CheckMessages(msgs); err != nil {
		return nil, err
	}

	cfg := &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.HTTPClient != nil {
		cfg.HTTPClient = g.HTTPClient
	}
	if g.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, &ProviderError{Provider: geminiProvider, Err: err}
	}

	system, turns := splitSystem(msgs)
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := geminiRoleUser
		if m.Role == completion.RoleAssistant {
			role = geminiRoleModel
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Content}}})
	}

	next, stop := iter.Pull2(client.Models.GenerateContentStream(ctx, g.Model, contents, config))

	return completion.NewStream(func() (string, bool, error) {
		resp, err, ok := next()
		if !ok {
			return "", false, nil
		}
		if err != nil {
			return "", false, geminiError(err)
		}
		if resp == nil {
			return "", true, nil
		}
		return resp.Text(), true, nil
	}, func() error {
		stop()
		return nil
	}), nil
}

func (g *GeminiAdapter) Available() bool {
	return g.APIKey != ""
}

func geminiError(err error) error {
	pe := &ProviderError{Provider: geminiProvider, Err: err}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		pe.Status = apiErr.Code
	}
	return pe
}
