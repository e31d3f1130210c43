package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mlorentedev/productai/internal/completion"
)

const (
	claudeProvider         = "claude"
	claudeDefaultMaxTokens = 1024
)

// ClaudeAdapter streams from the Anthropic Messages API.
type ClaudeAdapter struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

func (c *ClaudeAdapter) Name() string {
	return fmt.Sprintf("Claude (%s)", c.Model)
}

func (c *ClaudeAdapter) Complete(ctx context.Context, msgs []completion.Message) (completion.Stream, error) {
	if err := completion.CheckMessages(msgs); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithAPIKey(c.APIKey)}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}
	if c.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	}
	client := anthropic.NewClient(opts...)

	system, turns := splitSystem(msgs)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.Model),
		MaxTokens: int64(c.maxTokens()),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, m := range turns {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == completion.RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
			continue
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
	}

	stream := client.Messages.NewStreaming(ctx, params)

	return completion.NewStream(func() (string, bool, error) {
		if !stream.Next() {
			if err := stream.Err(); err != nil {
				return "", false, claudeError(err)
			}
			return "", false, nil
		}
		event := stream.Current()
		if event.Type != "content_block_delta" {
			return "", true, nil
		}
		delta := event.AsContentBlockDelta().Delta
		if delta.Type != "text_delta" {
			return "", true, nil
		}
		return delta.Text, true, nil
	}, stream.Close), nil
}

func (c *ClaudeAdapter) Available() bool {
	return c.APIKey != ""
}

func (c *ClaudeAdapter) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return claudeDefaultMaxTokens
}

func claudeError(err error) error {
	pe := &ProviderError{Provider: claudeProvider, Err: err}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		pe.Status = apiErr.StatusCode
	}
	return pe
}
