package adapter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mlorentedev/productai/internal/completion"
)

const (
	ollamaProvider = "ollama"
	ollamaMaxLine  = 1 << 20
)

// OllamaAdapter connects to a local Ollama instance via /api/chat with
// streaming enabled. Each response line is one JSON object.
type OllamaAdapter struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatChunk struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error"`
}

func (o *OllamaAdapter) Name() string {
	return fmt.Sprintf("Ollama (%s)", o.Model)
}

func (o *OllamaAdapter) Complete(ctx context.Context, msgs []completion.Message) (completion.Stream, error) {
	if err := completion.CheckMessages(msgs); err != nil {
		return nil, err
	}

	reqBody := ollamaChatRequest{Model: o.Model, Stream: true}
	for _, m := range msgs {
		reqBody.Messages = append(reqBody.Messages, ollamaMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, o.fail(0, fmt.Errorf("marshal request: %w", err))
	}

	url := strings.TrimRight(o.BaseURL, "/") + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, o.fail(0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client().Do(req)
	if err != nil {
		return nil, o.fail(0, fmt.Errorf("request: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var chunk ollamaChatChunk
		if err := json.NewDecoder(resp.Body).Decode(&chunk); err == nil && chunk.Error != "" {
			return nil, o.fail(resp.StatusCode, errors.New(chunk.Error))
		}
		return nil, o.fail(resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), ollamaMaxLine)
	done := false

	return completion.NewStream(func() (string, bool, error) {
		if done {
			return "", false, nil
		}
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk ollamaChatChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				return "", false, o.fail(0, fmt.Errorf("decode chunk: %w", err))
			}
			if chunk.Error != "" {
				return "", false, o.fail(0, errors.New(chunk.Error))
			}
			done = chunk.Done
			return chunk.Message.Content, true, nil
		}
		if err := scanner.Err(); err != nil {
			return "", false, o.fail(0, fmt.Errorf("read stream: %w", err))
		}
		return "", false, o.fail(0, fmt.Errorf("stream ended before done: %w", io.ErrUnexpectedEOF))
	}, resp.Body.Close), nil
}

func (o *OllamaAdapter) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(o.BaseURL, "/")+"/", nil)
	if err != nil {
		return false
	}

	resp, err := o.client().Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (o *OllamaAdapter) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

func (o *OllamaAdapter) fail(status int, err error) error {
	return &ProviderError{Provider: ollamaProvider, Status: status, Err: err}
}
