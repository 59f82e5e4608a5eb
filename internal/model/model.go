package model

import (
	"time"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageEvent is a single observed turn. It is never mutated after creation.
type MessageEvent struct {
	Type           Role      `json:"type"`
	MessageID      string    `json:"messageId"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversationId,omitempty"`
	Model          string    `json:"model,omitempty"`
	// ThinkingTime is the host-reported reasoning duration in seconds, if known.
	ThinkingTime *float64 `json:"thinkingTime,omitempty"`
}

// ChatInfo stores metadata about a conversation. Identity is ID.
type ChatInfo struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

// MessageRecord is the delivery shape of a message sent to the remote store.
type MessageRecord struct {
	MessageID      string   `json:"message_id"`
	Content        string   `json:"content"`
	Role           Role     `json:"role"`
	Rank           int      `json:"rank"`
	ConversationID string   `json:"conversation_id"`
	Model          string   `json:"model,omitempty"`
	ThinkingTime   *float64 `json:"thinking_time,omitempty"`
}

// Batch is the combined payload of one flush.
type Batch struct {
	Chats    []ChatInfo      `json:"chats"`
	Messages []MessageRecord `json:"messages"`
}

// Empty reports whether the batch carries nothing to deliver.
func (b Batch) Empty() bool {
	return len(b.Chats) == 0 && len(b.Messages) == 0
}

// Reply is a fully assembled assistant reply decoded from a streamed response.
type Reply struct {
	ID             string `json:"id"`
	Content        string `json:"content"`
	ConversationID string `json:"conversation_id"`
	Model          string `json:"model,omitempty"`
}

// UserStats is the remote store's per-user summary.
type UserStats struct {
	TotalChats    int `json:"total_chats"`
	TotalMessages int `json:"total_messages"`
}

// UserMetadata is pushed to the remote store once per session.
type UserMetadata struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Plan     string `json:"plan,omitempty"`
	Locale   string `json:"locale,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Notification is a remote-store notification shown by UI layers.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
