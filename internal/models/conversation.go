package models

import "time"

const ConversationSchemaVersion = 1

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole `json:"role" msgpack:"role"`
	Content string   `json:"content" msgpack:"content"`
}

// Conversation holds one user's health-advice exchange so follow-up turns
// can be answered with context.
type Conversation struct {
	ID            string        `json:"id" msgpack:"id"`
	UserID        string        `json:"user_id" msgpack:"user_id"`
	Messages      []ChatMessage `json:"messages" msgpack:"messages"`
	CreatedAt     time.Time     `json:"created_at" msgpack:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" msgpack:"updated_at"`
	SchemaVersion int           `json:"schema_version" msgpack:"schema_version"`
}

func (c *Conversation) AddMessage(role ChatRole, content string) {
	c.Messages = append(c.Messages, ChatMessage{Role: role, Content: content})
	c.UpdatedAt = time.Now()
}

type ChatRequest struct {
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type ChatResponse struct {
	Response         string        `json:"response"`
	ConversationID   string        `json:"conversation_id"`
	RequiresFollowup bool          `json:"requires_followup"`
	FollowupQuestion string        `json:"followup_question,omitempty"`
	Context          []ChatMessage `json:"context"`
}
