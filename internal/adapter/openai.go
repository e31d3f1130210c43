package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mlorentedev/productai/internal/completion"
)

const openAIProvider = "openai"

// OpenAIAdapter streams chat completions through the official openai-go SDK.
type OpenAIAdapter struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func (o *OpenAIAdapter) Name() string {
	return fmt.Sprintf("OpenAI (%s)", o.Model)
}

func (o *OpenAIAdapter) Complete(ctx context.Context, msgs []completion.Message) (completion.Stream, error) {
	if err := completion.CheckMessages(msgs); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithAPIKey(o.APIKey)}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	client := openai.NewClient(opts...)

	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case completion.RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case completion.RoleAssistant:
			params = append(params, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}

	stream := client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.Model),
		Messages: params,
	})

	return completion.NewStream(func() (string, bool, error) {
		if !stream.Next() {
			if err := stream.Err(); err != nil {
				return "", false, openAIError(err)
			}
			return "", false, nil
		}
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			return "", true, nil
		}
		return chunk.Choices[0].Delta.Content, true, nil
	}, stream.Close), nil
}

func (o *OpenAIAdapter) Available() bool {
	return o.APIKey != ""
}

func openAIError(err error) error {
	pe := &ProviderError{Provider: openAIProvider, Err: err}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		pe.Status = apiErr.StatusCode
	}
	return pe
}
