package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mlorentedev/productai/internal/completion"
)

const descriptionMarker = "Description: "

// ErrMockFailure is emitted by a MockAdapter configured with FailAfter.
var ErrMockFailure = errors.New("mock: simulated provider failure")

// MockAdapter echoes the description from the last user turn back word by
// word, capitalizing its first letter. Used for development and tests
// without a real provider.
type MockAdapter struct {
	// Delay is waited before every chunk.
	Delay time.Duration
	// FailAfter > 0 makes the stream fail after that many chunks.
	FailAfter int
}

func (m *MockAdapter) Name() string { return "Mock" }

func (m *MockAdapter) Complete(ctx context.Context, msgs []completion.Message) (completion.Stream, error) {
	if err := completion.CheckMessages(msgs); err != nil {
		return nil, err
	}

	words := strings.SplitAfter(mockReply(msgs[len(msgs)-1].Content), " ")
	sent := 0

	return completion.NewStream(func() (string, bool, error) {
		if m.FailAfter > 0 && sent >= m.FailAfter {
			return "", false, &ProviderError{Provider: "mock", Err: ErrMockFailure}
		}
		if sent >= len(words) {
			return "", false, nil
		}
		if m.Delay > 0 {
			select {
			case <-time.After(m.Delay):
			case <-ctx.Done():
				return "", false, &ProviderError{Provider: "mock", Err: fmt.Errorf("mock: %w", ctx.Err())}
			}
		}
		w := words[sent]
		sent++
		return w, true, nil
	}, nil), nil
}

func (m *MockAdapter) Available() bool { return true }

func mockReply(userTurn string) string {
	text := userTurn
	if i := strings.LastIndex(userTurn, descriptionMarker); i >= 0 {
		text = userTurn[i+len(descriptionMarker):]
	}
	text = strings.TrimSpace(text)
	if len(text) > 0 && text[0] >= 'a' && text[0] <= 'z' {
		text = strings.ToUpper(text[:1]) + text[1:]
	}
	return text
}
