// Package llm wraps the Gemini SDK behind a small completion interface so
// services depending on generation can be tested with a stub.
package llm

import "context"

type Message struct {
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider produces a text completion for a system prompt plus conversation
// turns. Implementations must be safe for concurrent use.
type Provider interface {
	Complete(ctx context.Context, system string, messages []Message, temperature float64) (string, error)
	ModelID() string
}
