package adapter

import (
	"context"
	"fmt"

	"github.com/mlorentedev/productai/internal/completion"
)

// Completer defines the contract for completion providers.
type Completer interface {
	Name() string
	Complete(ctx context.Context, msgs []completion.Message) (completion.Stream, error)
	Available() bool
}

// ModelInfo is exposed via GET /models.
type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Active   bool   `json:"active"`
}

// ProviderError wraps any transport, auth, quota or decode failure of a
// provider call. Status is the upstream HTTP status when known.
type ProviderError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// splitSystem separates system turns, which some providers take as a
// dedicated parameter, from the conversation.
func splitSystem(msgs []completion.Message) (system string, rest []completion.Message) {
	for _, m := range msgs {
		if m.Role == completion.RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
