package completion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mlorentedev/productai/internal/prompt"
)

// Role tags a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the body of POST /completion/product-descriptions.
type Request struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Keyword     string    `json:"keyword"`
	Messages    []Message `json:"messages"`
}

var (
	// ErrBadRequest marks a request rejected before any provider call.
	ErrBadRequest = errors.New("bad request")
	// ErrInvalidMessages is returned when a message list cannot be sent to a provider.
	ErrInvalidMessages = errors.New("messages must be non-empty and end with a user turn")
)

const userTemplate = "Prompt: %s Description: %s"

// Validate checks the caller-supplied fields. maxDescription <= 0 disables
// the length check.
func (r Request) Validate(maxDescription int) error {
	if _, err := prompt.Parse(r.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrBadRequest)
	}
	if maxDescription > 0 && len(r.Description) > maxDescription {
		return fmt.Errorf("%w: description too long: %d characters (max %d)", ErrBadRequest, len(r.Description), maxDescription)
	}
	for i, m := range r.Messages {
		if !m.Role.valid() {
			return fmt.Errorf("%w: messages[%d]: invalid role %q", ErrBadRequest, i, m.Role)
		}
	}
	return nil
}

// Build validates r and returns the outbound conversation: the caller's
// prior messages followed by one synthesized user turn carrying the rendered
// instruction and the original description.
func (r Request) Build(maxDescription int) ([]Message, error) {
	if err := r.Validate(maxDescription); err != nil {
		return nil, err
	}
	instruction, err := prompt.Render(prompt.Type(r.Type), r.Keyword)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	out := make([]Message, 0, len(r.Messages)+1)
	out = append(out, r.Messages...)
	out = append(out, Message{
		Role:    RoleUser,
		Content: fmt.Sprintf(userTemplate, instruction, r.Description),
	})
	return out, nil
}

// CheckMessages enforces the provider-side precondition.
func CheckMessages(msgs []Message) error {
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != RoleUser {
		return ErrInvalidMessages
	}
	return nil
}

func (r Role) valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}
