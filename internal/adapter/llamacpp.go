package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mlorentedev/productai/internal/completion"
)

const llamaCppProvider = "llamacpp"

// LlamaCppAdapter connects to llama-server's OpenAI-compatible
// /v1/chat/completions. Any other OpenAI-compatible gateway works too.
type LlamaCppAdapter struct {
	BaseURL string
	Model   string
	APIKey  string
	Client  *http.Client
}

func (l *LlamaCppAdapter) Name() string {
	return fmt.Sprintf("llama.cpp (%s)", l.Model)
}

func (l *LlamaCppAdapter) Complete(ctx context.Context, msgs []completion.Message) (completion.Stream, error) {
	if err := completion.CheckMessages(msgs); err != nil {
		return nil, err
	}

	cfg := openai.DefaultConfig(l.APIKey)
	cfg.BaseURL = strings.TrimRight(l.BaseURL, "/") + "/v1"
	if l.Client != nil {
		cfg.HTTPClient = l.Client
	}
	client := openai.NewClientWithConfig(cfg)

	req := openai.ChatCompletionRequest{
		Model:    l.Model,
		Stream:   true,
		Messages: make([]openai.ChatCompletionMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	stream, err := client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, llamaCppError(err)
	}

	return completion.NewStream(func() (string, bool, error) {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		if err != nil {
			return "", false, llamaCppError(err)
		}
		if len(resp.Choices) == 0 {
			return "", true, nil
		}
		return resp.Choices[0].Delta.Content, true, nil
	}, stream.Close), nil
}

func (l *LlamaCppAdapter) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(l.BaseURL, "/")+"/health", nil)
	if err != nil {
		return false
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func llamaCppError(err error) error {
	pe := &ProviderError{Provider: llamaCppProvider, Err: err}
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.Status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		pe.Status = reqErr.HTTPStatusCode
	}
	return pe
}
