package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mlorentedev/productai/internal/completion"
)

func writeSSE(w http.ResponseWriter, event, data string) {
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	w.(http.Flusher).Flush()
}

func openAIChunk(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion.chunk",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index": 0,
			"delta": map[string]any{"content": content},
		}},
	})
	return string(b)
}

func fakeOpenAIServer(t *testing.T, parts []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Model    string `json:"model"`
			Stream   bool   `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content any    `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !body.Stream {
			t.Error("expected stream=true")
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, p := range parts {
			writeSSE(w, "", openAIChunk(p))
		}
		writeSSE(w, "", "[DONE]")
	}))
}

func TestOpenAIAdapterComplete(t *testing.T) {
	srv := fakeOpenAIServer(t, []string{"Hel", "lo", " world"})
	defer srv.Close()

	a := &OpenAIAdapter{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1/"}
	s, err := a.Complete(context.Background(), userTurn("hello world"))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	got, err := completion.Collect(s)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("got %q, want %q", got, "Hello world")
	}
}

func TestOpenAIAdapterAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	a := &OpenAIAdapter{APIKey: "bad", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1/"}
	s, err := a.Complete(context.Background(), userTurn("hello"))
	if err == nil {
		_, err = completion.Collect(s)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Status != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", pe.Status, http.StatusUnauthorized)
	}
}

func TestOpenAIAdapterAvailable(t *testing.T) {
	if (&OpenAIAdapter{}).Available() {
		t.Error("expected unavailable without API key")
	}
	if !(&OpenAIAdapter{APIKey: "sk"}).Available() {
		t.Error("expected available with API key")
	}
}

func claudeDelta(text string) string {
	b, _ := json.Marshal(map[string]any{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]any{"type": "text_delta", "text": text},
	})
	return string(b)
}

func TestClaudeAdapterComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("x-api-key: got %q, want %q", got, "test-key")
		}
		var body struct {
			System []struct {
				Text string `json:"text"`
			} `json:"system"`
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
			Stream bool `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(body.System) != 1 || body.System[0].Text != "system prompt" {
			t.Errorf("system: got %+v", body.System)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
			t.Errorf("messages: got %+v", body.Messages)
		}
		if !body.Stream {
			t.Error("expected stream=true")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, "content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`)
		for _, p := range []string{"Soft ", "blue ", "shoes"} {
			writeSSE(w, "content_block_delta", claudeDelta(p))
		}
		writeSSE(w, "content_block_stop", `{"type":"content_block_stop","index":0}`)
		writeSSE(w, "message_stop", `{"type":"message_stop"}`)
	}))
	defer srv.Close()

	a := &ClaudeAdapter{BaseURL: srv.URL, APIKey: "test-key", Model: "claude-haiku-4-5"}
	s, err := a.Complete(context.Background(), userTurn("soft blue shoes"))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	got, err := completion.Collect(s)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got != "Soft blue shoes" {
		t.Errorf("got %q, want %q", got, "Soft blue shoes")
	}
}

func TestClaudeAdapterAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	a := &ClaudeAdapter{BaseURL: srv.URL, APIKey: "bad", Model: "claude-haiku-4-5"}
	s, err := a.Complete(context.Background(), userTurn("hello"))
	if err == nil {
		_, err = completion.Collect(s)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Status != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", pe.Status, http.StatusUnauthorized)
	}
}

func TestClaudeAdapterDefaults(t *testing.T) {
	c := &ClaudeAdapter{Model: "claude-haiku-4-5"}
	if c.maxTokens() != claudeDefaultMaxTokens {
		t.Errorf("maxTokens: got %d, want %d", c.maxTokens(), claudeDefaultMaxTokens)
	}
	if c.Available() {
		t.Error("expected unavailable without API key")
	}
	if c.Name() != "Claude (claude-haiku-4-5)" {
		t.Errorf("name: got %q", c.Name())
	}
}

func TestLlamaCppAdapterComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, p := range []string{"I go", " to the", " store."} {
			writeSSE(w, "", openAIChunk(p))
		}
		writeSSE(w, "", "[DONE]")
	}))
	defer srv.Close()

	a := &LlamaCppAdapter{BaseURL: srv.URL, Model: "qwen", Client: &http.Client{Timeout: 5 * time.Second}}
	s, err := a.Complete(context.Background(), userTurn("i goes to store"))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	got, err := completion.Collect(s)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got != "I go to the store." {
		t.Errorf("got %q, want %q", got, "I go to the store.")
	}
}

func TestLlamaCppAdapterServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"message":"loading model","type":"unavailable_error"}}`)
	}))
	defer srv.Close()

	a := &LlamaCppAdapter{BaseURL: srv.URL, Model: "qwen", Client: &http.Client{Timeout: 5 * time.Second}}
	_, err := a.Complete(context.Background(), userTurn("hello"))
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Status != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", pe.Status, http.StatusServiceUnavailable)
	}
}

func TestLlamaCppAdapterAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := &LlamaCppAdapter{BaseURL: srv.URL, Model: "qwen", Client: &http.Client{Timeout: time.Second}}
	if !a.Available() {
		t.Error("expected available when /health is OK")
	}

	down := &LlamaCppAdapter{BaseURL: "http://localhost:99999", Model: "qwen", Client: &http.Client{Timeout: time.Second}}
	if down.Available() {
		t.Error("expected not available when server is unreachable")
	}
}

func TestGeminiAdapterComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:streamGenerateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, p := range []string{"Hel", "lo"} {
			b, _ := json.Marshal(map[string]any{
				"candidates": []map[string]any{{
					"content": map[string]any{
						"role":  "model",
						"parts": []map[string]any{{"text": p}},
					},
				}},
			})
			writeSSE(w, "", string(b))
		}
	}))
	defer srv.Close()

	a := &GeminiAdapter{BaseURL: srv.URL, APIKey: "test-key", Model: "gemini-2.0-flash"}
	s, err := a.Complete(context.Background(), userTurn("hello"))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	got, err := completion.Collect(s)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got != "Hello" {
		t.Errorf("got %q, want %q", got, "Hello")
	}
}

func TestGeminiAdapterAvailable(t *testing.T) {
	if (&GeminiAdapter{}).Available() {
		t.Error("expected unavailable without API key")
	}
}
